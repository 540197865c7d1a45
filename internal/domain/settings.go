package domain

import "strings"

// Settings is the persisted application configuration.
type Settings struct {
	APIProvider       APIProvider `json:"apiProvider"`
	APIKey            string      `json:"apiKey"`
	BaseURL           string      `json:"baseURL"`
	DefaultPlatform   Platform    `json:"defaultPlatform"`
	DefaultStyle      Style       `json:"defaultStyle"`
	SelectedModel     Model       `json:"selectedModel"`
	SelectedLanguage  Language    `json:"selectedLanguage"`
	BrandName         string      `json:"brandName"`
	MainImageCount    int         `json:"mainImageCount"`
	DetailImageCount  int         `json:"detailImageCount"`
	ExtraInfo         string      `json:"extraInfo"`
	UILanguage        Language    `json:"uiLanguage"`
	Theme             Theme       `json:"theme"`
	ExportPath        string      `json:"exportPath"`
	FooterBrandName   string      `json:"footerBrandName"`
	FooterBrandNameEn string      `json:"footerBrandNameEn"`
	FooterSlogan      string      `json:"footerSlogan"`
	FooterCode        string      `json:"footerCode"`
}

// DefaultSettings returns the first-run configuration.
func DefaultSettings() Settings {
	return Settings{
		APIProvider:      ProviderGoogle,
		DefaultPlatform:  PlatformAmazon,
		DefaultStyle:     StyleMinimal,
		SelectedModel:    ModelNanoBanana,
		SelectedLanguage: LanguageTraditionalChinese,
		MainImageCount:   DefaultMainImageCount,
		DetailImageCount: DefaultDetailImageCount,
		UILanguage:       LanguageTraditionalChinese,
		Theme:            ThemeSystem,
	}
}

// SettingsPatch carries optional settings updates.
type SettingsPatch struct {
	APIProvider       *APIProvider `json:"apiProvider,omitempty"`
	APIKey            *string      `json:"apiKey,omitempty"`
	BaseURL           *string      `json:"baseURL,omitempty" validate:"omitempty,len=0|url"`
	DefaultPlatform   *Platform    `json:"defaultPlatform,omitempty"`
	DefaultStyle      *Style       `json:"defaultStyle,omitempty"`
	SelectedModel     *Model       `json:"selectedModel,omitempty"`
	SelectedLanguage  *Language    `json:"selectedLanguage,omitempty"`
	BrandName         *string      `json:"brandName,omitempty" validate:"omitempty,max=80"`
	MainImageCount    *int         `json:"mainImageCount,omitempty" validate:"omitempty,min=0,max=10"`
	DetailImageCount  *int         `json:"detailImageCount,omitempty" validate:"omitempty,min=0,max=10"`
	ExtraInfo         *string      `json:"extraInfo,omitempty" validate:"omitempty,max=2000"`
	UILanguage        *Language    `json:"uiLanguage,omitempty"`
	Theme             *Theme       `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	ExportPath        *string      `json:"exportPath,omitempty"`
	FooterBrandName   *string      `json:"footerBrandName,omitempty"`
	FooterBrandNameEn *string      `json:"footerBrandNameEn,omitempty"`
	FooterSlogan      *string      `json:"footerSlogan,omitempty"`
	FooterCode        *string      `json:"footerCode,omitempty"`
}

// Apply merges the patch into s. Switching provider clears the custom base
// URL so the provider default is used, unless the same patch sets one.
func (p SettingsPatch) Apply(s *Settings) {
	if p.APIProvider != nil {
		next := NormalizeProvider(string(*p.APIProvider))
		if next != s.APIProvider {
			s.BaseURL = ""
		}
		s.APIProvider = next
	}
	if p.APIKey != nil && !IsMaskedKey(*p.APIKey) {
		s.APIKey = strings.TrimSpace(*p.APIKey)
	}
	// An empty base URL falls back to the provider endpoint.
	if p.BaseURL != nil {
		s.BaseURL = strings.TrimSpace(*p.BaseURL)
	}
	if p.DefaultPlatform != nil {
		s.DefaultPlatform = NormalizePlatform(string(*p.DefaultPlatform))
	}
	if p.DefaultStyle != nil {
		s.DefaultStyle = NormalizeStyle(string(*p.DefaultStyle))
	}
	if p.SelectedModel != nil {
		s.SelectedModel = NormalizeModel(string(*p.SelectedModel))
	}
	if p.SelectedLanguage != nil {
		s.SelectedLanguage = NormalizeLanguage(string(*p.SelectedLanguage), s.SelectedLanguage)
	}
	if p.BrandName != nil {
		s.BrandName = *p.BrandName
	}
	if p.MainImageCount != nil {
		s.MainImageCount = *p.MainImageCount
	}
	if p.DetailImageCount != nil {
		s.DetailImageCount = *p.DetailImageCount
	}
	if p.ExtraInfo != nil {
		s.ExtraInfo = *p.ExtraInfo
	}
	if p.UILanguage != nil {
		s.UILanguage = NormalizeLanguage(string(*p.UILanguage), s.UILanguage)
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.ExportPath != nil {
		s.ExportPath = strings.TrimSpace(*p.ExportPath)
	}
	if p.FooterBrandName != nil {
		s.FooterBrandName = *p.FooterBrandName
	}
	if p.FooterBrandNameEn != nil {
		s.FooterBrandNameEn = *p.FooterBrandNameEn
	}
	if p.FooterSlogan != nil {
		s.FooterSlogan = *p.FooterSlogan
	}
	if p.FooterCode != nil {
		s.FooterCode = *p.FooterCode
	}
}

// ApplyTemplate copies a template's generation configuration into s.
func (s *Settings) ApplyTemplate(t Template) {
	main, detail := t.EffectiveImageCounts()
	s.DefaultPlatform = t.Platform
	s.DefaultStyle = t.Style
	s.SelectedModel = t.Model
	s.SelectedLanguage = t.Language
	s.BrandName = t.BrandName
	s.MainImageCount = main
	s.DetailImageCount = detail
	s.ExtraInfo = t.ExtraInfo
}

// IsMaskedKey reports whether key has the shape Redacted produces: at least
// one leading '*' and at most four visible trailing characters. Such a value
// is an echo of a redacted response, never a real credential.
func IsMaskedKey(key string) bool {
	key = strings.TrimSpace(key)
	visible := strings.TrimLeft(key, "*")
	return len(visible) < len(key) && len(visible) <= 4
}

// Redacted hides the API key for responses.
func (s Settings) Redacted() Settings {
	if s.APIKey == "" {
		return s
	}
	key := s.APIKey
	if len(key) > 4 {
		key = strings.Repeat("*", len(key)-4) + key[len(key)-4:]
	} else {
		key = strings.Repeat("*", len(key))
	}
	s.APIKey = key
	return s
}
