package studio

import (
	"context"
	"fmt"
	"strings"

	"detailgen/internal/domain"
	"detailgen/internal/normalize"
	"detailgen/internal/providers/genai"
)

// AnalyzeRequest carries an uploaded photo. Platform defaults to the
// settings' default platform.
type AnalyzeRequest struct {
	ImageBase64 string
	MimeType    string
	Platform    domain.Platform
}

// TextRequest asks for listing copy.
type TextRequest struct {
	Product   domain.Product  `json:"product"`
	Platform  domain.Platform `json:"platform"`
	Style     domain.Style    `json:"style"`
	Language  domain.Language `json:"language"`
	BrandName string          `json:"brandName,omitempty" validate:"max=80"`
	ExtraInfo string          `json:"extraInfo,omitempty" validate:"max=2000"`
}

// ImageRequest asks for one generated image. Model defaults to the
// settings' selected model.
type ImageRequest struct {
	Prompt   string           `json:"prompt" validate:"required,max=4000"`
	Style    domain.Style     `json:"style"`
	Platform domain.Platform  `json:"platform"`
	Type     domain.ImageType `json:"type"`
	Model    domain.Model     `json:"model,omitempty"`
}

// EditRequest asks for an edit of an existing image.
type EditRequest struct {
	ImageBase64 string       `json:"image" validate:"required"`
	MimeType    string       `json:"mimeType"`
	Prompt      string       `json:"prompt" validate:"required,max=4000"`
	Model       domain.Model `json:"model,omitempty"`
}

// DetailPageRequest asks for the five-module detail page.
type DetailPageRequest struct {
	Product   domain.Product  `json:"product"`
	Platform  domain.Platform `json:"platform"`
	Style     domain.Style    `json:"style"`
	Language  domain.Language `json:"language"`
	Model     domain.Model    `json:"model,omitempty"`
	BrandName string          `json:"brandName,omitempty" validate:"max=80"`
	ExtraInfo string          `json:"extraInfo,omitempty" validate:"max=2000"`
}

func (r *TextRequest) normalize(settings domain.Settings) {
	r.Platform = domain.NormalizePlatform(firstNonBlank(string(r.Platform), string(settings.DefaultPlatform)))
	r.Style = domain.NormalizeStyle(firstNonBlank(string(r.Style), string(settings.DefaultStyle)))
	r.Language = domain.NormalizeLanguage(string(r.Language), settings.SelectedLanguage)
}

func (r *DetailPageRequest) normalize(settings domain.Settings) {
	r.Platform = domain.NormalizePlatform(firstNonBlank(string(r.Platform), string(settings.DefaultPlatform)))
	r.Style = domain.NormalizeStyle(firstNonBlank(string(r.Style), string(settings.DefaultStyle)))
	r.Language = domain.NormalizeLanguage(string(r.Language), settings.SelectedLanguage)
	r.Model = domain.NormalizeModel(firstNonBlank(string(r.Model), string(settings.SelectedModel)))
}

func (r *ImageRequest) normalize(settings domain.Settings) {
	r.Platform = domain.NormalizePlatform(firstNonBlank(string(r.Platform), string(settings.DefaultPlatform)))
	r.Style = domain.NormalizeStyle(firstNonBlank(string(r.Style), string(settings.DefaultStyle)))
	r.Model = domain.NormalizeModel(firstNonBlank(string(r.Model), string(settings.SelectedModel)))
	switch r.Type {
	case domain.ImageTypeDetail, domain.ImageTypeScene:
	default:
		r.Type = domain.ImageTypeMain
	}
}

// AnalyzeProduct asks the vision model for category, description,
// suggestions and specifications. The prompt language follows the platform.
func (s *Service) AnalyzeProduct(ctx context.Context, req AnalyzeRequest) (domain.ProductAnalysis, error) {
	if strings.TrimSpace(req.ImageBase64) == "" {
		return domain.ProductAnalysis{}, fmt.Errorf("image: %w", domain.ErrInvalidInput)
	}
	sess := s.session(ctx)
	return s.analyze(ctx, sess, req), nil
}

func (s *Service) analyze(ctx context.Context, sess session, req AnalyzeRequest) domain.ProductAnalysis {
	platform := domain.NormalizePlatform(firstNonBlank(string(req.Platform), string(sess.settings.DefaultPlatform)))
	mock := func() domain.ProductAnalysis {
		return MockAnalysis(req.ImageBase64, platform.AnalysisLanguage())
	}
	if !sess.hasKey {
		s.fallback("analyze", sess, analysisModel, nil)
		return mock()
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	raw, err := sess.text(ctx, analysisModel, AnalysisPrompt(platform), &genai.InlineData{MimeType: mimeType, Data: req.ImageBase64}, false)
	if err != nil {
		s.fallback("analyze", sess, analysisModel, err)
		return mock()
	}
	obj, err := normalize.Object(raw)
	if err != nil {
		s.fallback("analyze", sess, analysisModel, err)
		return mock()
	}
	return MergeAnalysis(obj, mock())
}

// MergeAnalysis normalizes a decoded analysis answer field by field. Empty
// or unusable fields are taken from mock, and the lists are never nil.
func MergeAnalysis(obj map[string]any, mock domain.ProductAnalysis) domain.ProductAnalysis {
	out := domain.ProductAnalysis{
		Category:       strings.TrimSpace(normalize.FirstString(obj, "category", "productCategory", "type")),
		Description:    strings.TrimSpace(normalize.ToString(normalize.FirstValue(obj, "description", "productDescription"), normalize.TextKeys)),
		Suggestions:    normalize.Strings(obj["suggestions"], normalize.DetailKeys),
		Specifications: normalize.Specs(normalize.FirstValue(obj, "specifications", "specs")),
	}
	if out.Category == "" {
		out.Category = normalize.ToString(obj["category"], normalize.TextKeys)
	}
	if out.Category == "" {
		out.Category = mock.Category
	}
	if out.Description == "" {
		out.Description = mock.Description
	}
	if len(out.Suggestions) == 0 {
		out.Suggestions = append([]string{}, mock.Suggestions...)
	}
	if len(out.Specifications) == 0 {
		out.Specifications = append([]string{}, mock.Specifications...)
	}
	return out
}

// GenerateText writes the listing title, description and specifications.
func (s *Service) GenerateText(ctx context.Context, req TextRequest) domain.ListingTexts {
	sess := s.session(ctx)
	req.normalize(sess.settings)
	return s.generateText(ctx, sess, req)
}

func (s *Service) generateText(ctx context.Context, sess session, req TextRequest) domain.ListingTexts {
	if !sess.hasKey {
		s.fallback("text", sess, analysisModel, nil)
		return MockTexts(req)
	}
	raw, err := sess.text(ctx, analysisModel, TextPrompt(req), nil, false)
	if err != nil {
		s.fallback("text", sess, analysisModel, err)
		return MockTexts(req)
	}
	obj, err := normalize.Object(raw)
	if err != nil {
		s.fallback("text", sess, analysisModel, err)
		return MockTexts(req)
	}
	specs := normalize.Strings(obj["specifications"], normalize.TextKeys)
	if specs == nil {
		specs = []string{}
	}
	return domain.ListingTexts{
		Title:          normalize.ToString(normalize.FirstValue(obj, "title", "productName", "name"), normalize.TextKeys),
		Description:    normalize.ToString(normalize.FirstValue(obj, "description", "productDescription"), normalize.TextKeys),
		Specifications: specs,
	}
}

// GenerateImage renders one product image and returns it as a data URL.
func (s *Service) GenerateImage(ctx context.Context, req ImageRequest) string {
	sess := s.session(ctx)
	req.normalize(sess.settings)
	return s.generateImage(ctx, sess, req)
}

func (s *Service) generateImage(ctx context.Context, sess session, req ImageRequest) string {
	model := req.Model.ImageModel()
	if !sess.hasKey {
		s.fallback("image", sess, model, nil)
		return MockImage(req.Prompt, req.Type)
	}
	parts := []genai.Part{genai.TextPart(ImagePrompt(req.Prompt, req.Style, req.Platform))}
	url, err := sess.image(ctx, model, parts, req.Type.AspectRatio())
	if err != nil {
		s.fallback("image", sess, model, err)
		return MockImage(req.Prompt, req.Type)
	}
	return url
}

// EditImage applies prompt to an existing image. The result is portrait
// when the prompt mentions 3:4.
func (s *Service) EditImage(ctx context.Context, req EditRequest) string {
	sess := s.session(ctx)
	return s.editImage(ctx, sess, req)
}

func (s *Service) editImage(ctx context.Context, sess session, req EditRequest) string {
	model := domain.NormalizeModel(firstNonBlank(string(req.Model), string(sess.settings.SelectedModel))).ImageModel()
	if !sess.hasKey {
		s.fallback("edit", sess, model, nil)
		return MockEdit(req.ImageBase64, req.Prompt)
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	aspect := "1:1"
	if strings.Contains(req.Prompt, "3:4") {
		aspect = "3:4"
	}
	parts := []genai.Part{
		genai.ImagePart(mimeType, req.ImageBase64),
		genai.TextPart(req.Prompt),
	}
	url, err := sess.image(ctx, model, parts, aspect)
	if err != nil {
		s.fallback("edit", sess, model, err)
		return MockEdit(req.ImageBase64, req.Prompt)
	}
	return url
}

// GenerateDetailPage writes the five-module detail page. Fields missing
// from the model answer are filled from the mock page one by one.
func (s *Service) GenerateDetailPage(ctx context.Context, req DetailPageRequest) domain.DetailPageContent {
	sess := s.session(ctx)
	req.normalize(sess.settings)
	return s.generateDetailPage(ctx, sess, req)
}

func (s *Service) generateDetailPage(ctx context.Context, sess session, req DetailPageRequest) domain.DetailPageContent {
	mock := MockDetailPage(req.Product, req.Style, req.Language, req.BrandName)
	model := req.Model.TextModel()
	if !sess.hasKey {
		s.fallback("detail_page", sess, model, nil)
		return mock
	}
	raw, err := sess.text(ctx, model, DetailPagePrompt(req), nil, true)
	if err != nil {
		s.fallback("detail_page", sess, model, err)
		return mock
	}
	obj, err := normalize.Object(raw)
	if err != nil {
		s.fallback("detail_page", sess, model, err)
		return mock
	}
	return MergeDetailPage(obj, mock)
}

// MergeDetailPage normalizes a decoded detail page answer, taking each
// empty or missing field from mock.
func MergeDetailPage(obj map[string]any, mock domain.DetailPageContent) domain.DetailPageContent {
	section := func(name string) map[string]any {
		m, _ := obj[name].(map[string]any)
		if m == nil {
			return map[string]any{}
		}
		return m
	}
	str := func(m map[string]any, key, fallback string) string {
		if v := normalize.ToString(m[key], normalize.DetailKeys); v != "" {
			return v
		}
		return fallback
	}
	list := func(m map[string]any, key string, fallback []string) []string {
		if v := normalize.Strings(m[key], normalize.DetailKeys); len(v) > 0 {
			return v
		}
		return fallback
	}

	buyBox := section("buyBox")
	value := section("valueProposition")
	social := section("socialProof")
	service := section("serviceGuarantee")
	cross := section("crossSell")

	out := domain.DetailPageContent{
		BuyBox: domain.BuyBox{
			Title:         str(buyBox, "title", mock.BuyBox.Title),
			Price:         str(buyBox, "price", mock.BuyBox.Price),
			OriginalPrice: mock.BuyBox.OriginalPrice,
			CTA:           str(buyBox, "cta", mock.BuyBox.CTA),
		},
		ValueProposition: domain.ValueProposition{
			PainPoints:     list(value, "painPoints", mock.ValueProposition.PainPoints),
			Solutions:      list(value, "solutions", mock.ValueProposition.Solutions),
			Visualizations: list(value, "visualizations", mock.ValueProposition.Visualizations),
		},
		SocialProof: domain.SocialProof{
			Reviews:        mock.SocialProof.Reviews,
			SalesData:      str(social, "salesData", mock.SocialProof.SalesData),
			Certifications: list(social, "certifications", mock.SocialProof.Certifications),
		},
		ServiceGuarantee: domain.ServiceGuarantee{
			Shipping:     str(service, "shipping", mock.ServiceGuarantee.Shipping),
			ReturnPolicy: str(service, "returnPolicy", mock.ServiceGuarantee.ReturnPolicy),
			FAQ:          mock.ServiceGuarantee.FAQ,
		},
		CrossSell: domain.CrossSell{
			Recommendations: list(cross, "recommendations", mock.CrossSell.Recommendations),
		},
	}
	if normalize.Present(buyBox["originalPrice"]) {
		out.BuyBox.OriginalPrice = normalize.ToString(buyBox["originalPrice"], normalize.DetailKeys)
	}
	if reviews := normalize.Reviews(social["reviews"]); len(reviews) > 0 {
		out.SocialProof.Reviews = reviews
	}
	if faq := normalize.FAQ(service["faq"]); len(faq) > 0 {
		out.ServiceGuarantee.FAQ = faq
	}
	return out
}
