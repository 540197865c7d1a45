package domain

import "time"

// GeneratedImage is one image of a listing.
type GeneratedImage struct {
	ID     string    `json:"id"`
	URL    string    `json:"url"`
	Prompt string    `json:"prompt"`
	Type   ImageType `json:"type"`
}

// ListingTexts holds the editable copy of a listing.
type ListingTexts struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Specifications []string `json:"specifications"`
}

// BuyBox is the first-screen purchase decision module.
type BuyBox struct {
	Title         string `json:"title"`
	Price         string `json:"price"`
	OriginalPrice string `json:"originalPrice,omitempty"`
	CTA           string `json:"cta"`
}

// ValueProposition pairs user pain points with product solutions.
type ValueProposition struct {
	PainPoints     []string `json:"painPoints"`
	Solutions      []string `json:"solutions"`
	Visualizations []string `json:"visualizations"`
}

// Review is one customer review.
type Review struct {
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

// SocialProof is the trust module.
type SocialProof struct {
	Reviews        []Review `json:"reviews"`
	SalesData      string   `json:"salesData"`
	Certifications []string `json:"certifications"`
}

// FAQ is a question and its answer.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ServiceGuarantee covers shipping, returns and FAQ.
type ServiceGuarantee struct {
	Shipping     string `json:"shipping"`
	ReturnPolicy string `json:"returnPolicy"`
	FAQ          []FAQ  `json:"faq"`
}

// CrossSell lists related product recommendations.
type CrossSell struct {
	Recommendations []string `json:"recommendations"`
}

// DetailPageContent is the five-module marketing detail page.
type DetailPageContent struct {
	BuyBox           BuyBox           `json:"buyBox"`
	ValueProposition ValueProposition `json:"valueProposition"`
	SocialProof      SocialProof      `json:"socialProof"`
	ServiceGuarantee ServiceGuarantee `json:"serviceGuarantee"`
	CrossSell        CrossSell        `json:"crossSell"`
}

// GeneratedContent is a complete, editable listing.
type GeneratedContent struct {
	ID         string             `json:"id"`
	ProductID  string             `json:"productId,omitempty"`
	Platform   Platform           `json:"platform"`
	Style      Style              `json:"style"`
	Language   Language           `json:"language"`
	Model      Model              `json:"model"`
	Texts      ListingTexts       `json:"texts"`
	Images     []GeneratedImage   `json:"images"`
	DetailPage *DetailPageContent `json:"detailPage,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// FindImage returns the index of the image with id, or -1.
func (c *GeneratedContent) FindImage(id string) int {
	for i, img := range c.Images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to mutate.
func (c *GeneratedContent) Clone() *GeneratedContent {
	if c == nil {
		return nil
	}
	out := *c
	out.Texts.Specifications = append([]string(nil), c.Texts.Specifications...)
	out.Images = append([]GeneratedImage(nil), c.Images...)
	if c.DetailPage != nil {
		dp := *c.DetailPage
		out.DetailPage = &dp
	}
	return &out
}
