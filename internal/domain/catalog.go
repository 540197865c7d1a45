package domain

import "strings"

// Platform identifies the storefront a listing is written for.
type Platform string

const (
	PlatformAmazon Platform = "amazon"
	PlatformTaobao Platform = "taobao"
	PlatformJD     Platform = "jd"
	PlatformShopee Platform = "shopee"
)

// Style is the visual and tonal direction of generated content.
type Style string

const (
	StyleMinimal  Style = "minimal"
	StyleCyber    Style = "cyber"
	StyleChinese  Style = "chinese"
	StyleJapanese Style = "japanese"
	StyleLuxury   Style = "luxury"
	StyleNatural  Style = "natural"
	StyleCute     Style = "cute"
	StyleApple    Style = "apple"
)

// Model selects the image model variant.
type Model string

const (
	ModelNanoBanana Model = "nanobanana"
	ModelNanaBanana Model = "nanabanana"
)

// Language is a content and UI language code.
type Language string

const (
	LanguageSimplifiedChinese  Language = "zh-CN"
	LanguageTraditionalChinese Language = "zh-TW"
	LanguageEnglish            Language = "en"
)

// APIProvider selects the hosted endpoint and its auth header variant.
type APIProvider string

const (
	ProviderGoogle APIProvider = "google"
	ProviderZeabur APIProvider = "zeabur"
	ProviderOpenAI APIProvider = "openai"
)

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ImageType classifies a generated image by where it is shown.
type ImageType string

const (
	ImageTypeMain   ImageType = "main"
	ImageTypeDetail ImageType = "detail"
	ImageTypeScene  ImageType = "scene"
)

var (
	platforms = []Platform{PlatformAmazon, PlatformTaobao, PlatformJD, PlatformShopee}
	styles    = []Style{StyleMinimal, StyleCyber, StyleChinese, StyleJapanese, StyleLuxury, StyleNatural, StyleCute, StyleApple}
	languages = []Language{LanguageSimplifiedChinese, LanguageTraditionalChinese, LanguageEnglish}
)

// Platforms lists every supported platform in display order.
func Platforms() []Platform { return append([]Platform(nil), platforms...) }

// Styles lists every supported style in display order.
func Styles() []Style { return append([]Style(nil), styles...) }

// Languages lists every supported language in display order.
func Languages() []Language { return append([]Language(nil), languages...) }

// NormalizePlatform sanitizes free-form input, defaulting to amazon.
func NormalizePlatform(v string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range platforms {
		if p == known {
			return p
		}
	}
	return PlatformAmazon
}

// NormalizeStyle sanitizes free-form input, defaulting to minimal.
func NormalizeStyle(v string) Style {
	s := Style(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range styles {
		if s == known {
			return s
		}
	}
	return StyleMinimal
}

// NormalizeModel sanitizes free-form input, defaulting to nanobanana.
func NormalizeModel(v string) Model {
	if Model(strings.ToLower(strings.TrimSpace(v))) == ModelNanaBanana {
		return ModelNanaBanana
	}
	return ModelNanoBanana
}

// NormalizeLanguage accepts exact codes case-insensitively and returns
// fallback for anything else.
func NormalizeLanguage(v string, fallback Language) Language {
	trimmed := strings.TrimSpace(v)
	for _, known := range languages {
		if strings.EqualFold(trimmed, string(known)) {
			return known
		}
	}
	return fallback
}

// NormalizeProvider sanitizes free-form input, defaulting to google.
func NormalizeProvider(v string) APIProvider {
	switch APIProvider(strings.ToLower(strings.TrimSpace(v))) {
	case ProviderZeabur:
		return ProviderZeabur
	case ProviderOpenAI:
		return ProviderOpenAI
	default:
		return ProviderGoogle
	}
}

// IsChinese reports whether the language is one of the Chinese variants.
func (l Language) IsChinese() bool {
	return strings.HasPrefix(string(l), "zh")
}

// ImageModel returns the Gemini model id used for image generation and editing.
func (m Model) ImageModel() string {
	if m == ModelNanaBanana {
		return "gemini-3-pro-image-preview"
	}
	return "gemini-2.5-flash-image"
}

// TextModel returns the Gemini model id used for long-form structured copy.
func (m Model) TextModel() string {
	if m == ModelNanaBanana {
		return "gemini-2.5-pro"
	}
	return "gemini-2.5-flash"
}

// AnalysisLanguage is the language the analysis prompt is written in for
// the platform's audience.
func (p Platform) AnalysisLanguage() Language {
	switch p {
	case PlatformAmazon:
		return LanguageEnglish
	case PlatformShopee:
		return LanguageTraditionalChinese
	default:
		return LanguageSimplifiedChinese
	}
}

// AspectRatio returns the generation aspect ratio for the image type.
func (t ImageType) AspectRatio() string {
	if t == ImageTypeDetail {
		return "3:4"
	}
	return "1:1"
}
