package domain

// ProductAnalysis is what the vision model derives from an uploaded photo.
type ProductAnalysis struct {
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Suggestions    []string `json:"suggestions"`
	Specifications []string `json:"specifications"`
}

// Product is an uploaded photo together with its analysis.
type Product struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Tags     []string        `json:"tags"`
	ImageURL string          `json:"imageUrl,omitempty"`
	MimeType string          `json:"mimeType,omitempty"`
	Analysis ProductAnalysis `json:"analysis"`
}

// CategoryOrAnalysis prefers the explicit category, then the analyzed one.
func (p Product) CategoryOrAnalysis() string {
	if p.Category != "" {
		return p.Category
	}
	return p.Analysis.Category
}
