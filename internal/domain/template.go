package domain

import (
	"sort"
	"time"
)

const (
	DefaultMainImageCount   = 5
	DefaultDetailImageCount = 2
	MaxMainImageCount       = 10
	MaxDetailImageCount     = 10
)

// Template is a saved generation configuration.
type Template struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" validate:"required,max=80"`
	Description      string    `json:"description,omitempty" validate:"max=500"`
	Platform         Platform  `json:"platform"`
	Style            Style     `json:"style"`
	Model            Model     `json:"model"`
	Language         Language  `json:"language"`
	BrandName        string    `json:"brandName,omitempty" validate:"max=80"`
	MainImageCount   int       `json:"mainImageCount" validate:"min=0,max=10"`
	DetailImageCount int       `json:"detailImageCount" validate:"min=0,max=10"`
	ExtraInfo        string    `json:"extraInfo,omitempty" validate:"max=2000"`
	IsFavorite       bool      `json:"isFavorite"`
	UsageCount       int       `json:"usageCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// TemplatePatch carries optional template field updates.
type TemplatePatch struct {
	Name             *string   `json:"name,omitempty" validate:"omitempty,max=80"`
	Description      *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Platform         *Platform `json:"platform,omitempty"`
	Style            *Style    `json:"style,omitempty"`
	Model            *Model    `json:"model,omitempty"`
	Language         *Language `json:"language,omitempty"`
	BrandName        *string   `json:"brandName,omitempty" validate:"omitempty,max=80"`
	MainImageCount   *int      `json:"mainImageCount,omitempty" validate:"omitempty,min=0,max=10"`
	DetailImageCount *int      `json:"detailImageCount,omitempty" validate:"omitempty,min=0,max=10"`
	ExtraInfo        *string   `json:"extraInfo,omitempty" validate:"omitempty,max=2000"`
	IsFavorite       *bool     `json:"isFavorite,omitempty"`
	UsageCount       *int      `json:"usageCount,omitempty" validate:"omitempty,min=0"`
}

// Apply copies every non-nil patch field onto t.
func (p TemplatePatch) Apply(t *Template) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Platform != nil {
		t.Platform = NormalizePlatform(string(*p.Platform))
	}
	if p.Style != nil {
		t.Style = NormalizeStyle(string(*p.Style))
	}
	if p.Model != nil {
		t.Model = NormalizeModel(string(*p.Model))
	}
	if p.Language != nil {
		t.Language = NormalizeLanguage(string(*p.Language), t.Language)
	}
	if p.BrandName != nil {
		t.BrandName = *p.BrandName
	}
	if p.MainImageCount != nil {
		t.MainImageCount = *p.MainImageCount
	}
	if p.DetailImageCount != nil {
		t.DetailImageCount = *p.DetailImageCount
	}
	if p.ExtraInfo != nil {
		t.ExtraInfo = *p.ExtraInfo
	}
	if p.IsFavorite != nil {
		t.IsFavorite = *p.IsFavorite
	}
	if p.UsageCount != nil {
		t.UsageCount = *p.UsageCount
	}
}

// SortTemplates orders favorites first, then most recently updated.
func SortTemplates(items []Template) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsFavorite != items[j].IsFavorite {
			return items[i].IsFavorite
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}

// EffectiveImageCounts substitutes defaults for unset counts.
func (t Template) EffectiveImageCounts() (int, int) {
	main := t.MainImageCount
	if main == 0 {
		main = DefaultMainImageCount
	}
	detail := t.DetailImageCount
	if detail == 0 {
		detail = DefaultDetailImageCount
	}
	return main, detail
}
