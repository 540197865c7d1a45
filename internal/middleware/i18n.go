package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"detailgen/internal/domain"
	"detailgen/internal/i18n"
	"detailgen/internal/infra/geoip"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// UILanguage supplies the language chosen in settings.
type UILanguage func() domain.Language

// I18N stores the negotiated UI language (and country, when known) in the
// request context.
func I18N(settings UILanguage, locator geoip.Locator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := ResolveLocation(r, locator)
			lang := detectLanguage(r, settings, loc)
			ctx := context.WithValue(r.Context(), LocaleKey, lang)
			if loc.Country != "" {
				ctx = context.WithValue(ctx, CountryKey, loc.Country)
			}
			w.Header().Set("Content-Language", string(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// detectLanguage prefers X-Locale, then the settings language, then
// Accept-Language, then the caller's location.
func detectLanguage(r *http.Request, settings UILanguage, loc geoip.Location) domain.Language {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		return i18n.Match(v)
	}
	if settings != nil {
		if lang := settings(); lang != "" {
			return lang
		}
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		return i18n.Match(v)
	}
	if loc.Language != "" {
		return loc.Language
	}
	return i18n.DefaultLanguage
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LanguageFromContext returns the negotiated UI language.
func LanguageFromContext(ctx context.Context) domain.Language {
	if v, ok := ctx.Value(LocaleKey).(domain.Language); ok {
		return v
	}
	return i18n.DefaultLanguage
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveLocation resolves a best-effort location from proxy country
// headers, then the locator.
func ResolveLocation(r *http.Request, locator geoip.Locator) geoip.Location {
	if r == nil {
		return geoip.Location{}
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return geoip.ForCountry(val)
		}
	}
	if locator == nil {
		return geoip.Location{}
	}
	ip := ClientIP(r)
	if ip == "" {
		return geoip.Location{}
	}
	loc, err := locator.Locate(ip)
	if err != nil {
		return geoip.Location{}
	}
	return loc
}
