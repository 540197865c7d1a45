package studio

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"detailgen/internal/domain"
	"detailgen/internal/imageutil"
)

// GenerateRequest drives the full pipeline. Zero image counts take the
// settings' counts, then the defaults.
type GenerateRequest struct {
	Product          domain.Product  `json:"product"`
	Platform         domain.Platform `json:"platform"`
	Style            domain.Style    `json:"style"`
	Language         domain.Language `json:"language"`
	Model            domain.Model    `json:"model,omitempty"`
	BrandName        string          `json:"brandName,omitempty" validate:"max=80"`
	ExtraInfo        string          `json:"extraInfo,omitempty" validate:"max=2000"`
	MainImageCount   int             `json:"mainImageCount,omitempty" validate:"min=0,max=10"`
	DetailImageCount int             `json:"detailImageCount,omitempty" validate:"min=0,max=10"`
}

type imageJob struct {
	id     string
	prompt string
	kind   domain.ImageType
}

// Generate runs copy, carousel images, detail page and detail images in
// that order, then records the listing in history. Images render in
// parallel up to the configured concurrency and fall back one by one.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (domain.GeneratedContent, error) {
	sess := s.session(ctx)
	settings := sess.settings

	detailReq := DetailPageRequest{
		Product:   req.Product,
		Platform:  req.Platform,
		Style:     req.Style,
		Language:  req.Language,
		Model:     req.Model,
		BrandName: firstNonBlank(req.BrandName, settings.BrandName),
		ExtraInfo: firstNonBlank(req.ExtraInfo, settings.ExtraInfo),
	}
	detailReq.normalize(settings)
	mainCount, detailCount := imageCounts(req, settings)
	category := req.Product.CategoryOrAnalysis()

	s.logger.Info().
		Str("provider", string(sess.provider)).
		Str("platform", string(detailReq.Platform)).
		Str("style", string(detailReq.Style)).
		Int("main_images", mainCount).
		Int("detail_images", detailCount).
		Msg("studio: generating listing")

	texts := s.generateText(ctx, sess, TextRequest{
		Product:   detailReq.Product,
		Platform:  detailReq.Platform,
		Style:     detailReq.Style,
		Language:  detailReq.Language,
		BrandName: detailReq.BrandName,
		ExtraInfo: detailReq.ExtraInfo,
	})

	mainJobs := make([]imageJob, mainCount)
	for i := range mainJobs {
		prompt, kind := MainImagePrompt(category, i)
		mainJobs[i] = imageJob{id: s.newID(), prompt: prompt, kind: kind}
	}
	images := s.renderImages(ctx, sess, detailReq, mainJobs)

	detailPage := s.generateDetailPage(ctx, sess, detailReq)

	detailJobs := make([]imageJob, detailCount)
	for i := range detailJobs {
		detailJobs[i] = imageJob{
			id:     s.newID(),
			prompt: DetailImagePrompt(category, detailPage.ValueProposition.Visualizations, i),
			kind:   domain.ImageTypeDetail,
		}
	}
	images = append(images, s.renderImages(ctx, sess, detailReq, detailJobs)...)

	productID := req.Product.ID
	if productID == "" {
		productID = s.newID()
	}
	now := s.now()
	content := domain.GeneratedContent{
		ID:         s.newID(),
		ProductID:  productID,
		Platform:   detailReq.Platform,
		Style:      detailReq.Style,
		Language:   detailReq.Language,
		Model:      detailReq.Model,
		Texts:      texts,
		Images:     images,
		DetailPage: &detailPage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.history != nil {
		if err := s.history.AddHistory(ctx, content); err != nil {
			s.logger.Error().Err(err).Str("content_id", content.ID).Msg("studio: listing not recorded in history")
		}
	}
	return content, nil
}

func (s *Service) renderImages(ctx context.Context, sess session, req DetailPageRequest, jobs []imageJob) []domain.GeneratedImage {
	out := make([]domain.GeneratedImage, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			url := s.generateImage(ctx, sess, ImageRequest{
				Prompt:   job.prompt,
				Style:    req.Style,
				Platform: req.Platform,
				Type:     job.kind,
				Model:    req.Model,
			})
			out[i] = domain.GeneratedImage{ID: job.id, URL: url, Prompt: job.prompt, Type: job.kind}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func imageCounts(req GenerateRequest, settings domain.Settings) (int, int) {
	main := firstPositive(req.MainImageCount, settings.MainImageCount, domain.DefaultMainImageCount)
	detail := firstPositive(req.DetailImageCount, settings.DetailImageCount, domain.DefaultDetailImageCount)
	return min(main, domain.MaxMainImageCount), min(detail, domain.MaxDetailImageCount)
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// RegenerateRequest replaces one image of a listing.
type RegenerateRequest struct {
	Image    domain.GeneratedImage
	Prompt   string
	Style    domain.Style
	Platform domain.Platform
	Model    domain.Model
}

// RegenerateImage produces a replacement for an existing listing image.
// Inline images are edited in place; remote ones are generated afresh from
// the prompt. Detail images stay portrait.
func (s *Service) RegenerateImage(ctx context.Context, req RegenerateRequest) string {
	sess := s.session(ctx)
	prompt := firstNonBlank(req.Prompt, req.Image.Prompt)
	if req.Image.Type == domain.ImageTypeDetail && !strings.Contains(prompt, "3:4") {
		prompt += "，竖版3:4构图"
	}

	if mimeType, payload, err := imageutil.ParseDataURL(req.Image.URL); err == nil {
		return s.editImage(ctx, sess, EditRequest{
			ImageBase64: payload,
			MimeType:    mimeType,
			Prompt:      prompt,
			Model:       req.Model,
		})
	}

	imgReq := ImageRequest{
		Prompt:   prompt,
		Style:    req.Style,
		Platform: req.Platform,
		Type:     req.Image.Type,
		Model:    req.Model,
	}
	imgReq.normalize(sess.settings)
	return s.generateImage(ctx, sess, imgReq)
}
