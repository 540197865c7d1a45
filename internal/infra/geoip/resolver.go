// Package geoip turns client IP addresses into a country and the UI
// language served there.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"detailgen/internal/domain"
)

// ErrUnavailable is returned when no database is open.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// Location is what an address resolves to. Language is empty when the
// country is unknown.
type Location struct {
	Country  string
	Language domain.Language
}

// Locator resolves client addresses.
type Locator interface {
	Locate(ip string) (Location, error)
}

// Resolver is a Locator backed by a MaxMind country database.
type Resolver struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
}

// Open loads the database at path. A blank path yields a nil resolver, which
// is safe to call and reports ErrUnavailable.
func Open(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Locate returns the country and UI language for ip.
func (r *Resolver) Locate(ip string) (Location, error) {
	if r == nil {
		return Location{}, ErrUnavailable
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.reader == nil {
		return Location{}, ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return Location{}, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return Location{}, fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil || record.Country.IsoCode == "" {
		return Location{}, nil
	}
	return ForCountry(record.Country.IsoCode), nil
}

// Close releases the database. Later lookups report ErrUnavailable.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	return err
}

// ForCountry builds the Location for an ISO country code: TW, HK and MO get
// traditional Chinese, CN and SG simplified Chinese, everyone else English.
func ForCountry(country string) Location {
	country = strings.ToUpper(strings.TrimSpace(country))
	loc := Location{Country: country}
	switch country {
	case "":
	case "TW", "HK", "MO":
		loc.Language = domain.LanguageTraditionalChinese
	case "CN", "SG":
		loc.Language = domain.LanguageSimplifiedChinese
	default:
		loc.Language = domain.LanguageEnglish
	}
	return loc
}
