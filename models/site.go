package models

import (
	"net/url"
	"strings"
)

// Site identifies a supported menu platform
type Site string

const (
	SiteWeedmaps Site = "weedmaps"
	SiteDutchie  Site = "dutchie"
	SiteUnknown  Site = "unknown"
)

// ParseSite maps a site identifier to a Site; anything unrecognized is SiteUnknown
func ParseSite(s string) Site {
	switch Site(strings.ToLower(strings.TrimSpace(s))) {
	case SiteWeedmaps:
		return SiteWeedmaps
	case SiteDutchie:
		return SiteDutchie
	default:
		return SiteUnknown
	}
}

// DetectSite detects the menu platform from a page URL
func DetectSite(rawURL string) Site {
	if rawURL == "" {
		return SiteUnknown
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return SiteUnknown
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "weedmaps.com"):
		return SiteWeedmaps
	case strings.Contains(host, "dutchie.com"):
		return SiteDutchie
	}
	return SiteUnknown
}

// Supported reports whether the pipeline has a parser for the site
func (s Site) Supported() bool {
	return s == SiteWeedmaps || s == SiteDutchie
}

// RendersAsync reports whether listings may appear after page load.
// Dutchie menus are client-rendered and need polling.
func (s Site) RendersAsync() bool {
	return s == SiteDutchie
}

// DisplayName returns the platform name shown to users
func (s Site) DisplayName() string {
	switch s {
	case SiteWeedmaps:
		return "Weedmaps"
	case SiteDutchie:
		return "Dutchie"
	default:
		return "Unknown"
	}
}

// DispensaryNameFromURL guesses the dispensary name from a menu URL slug,
// e.g. https://weedmaps.com/dispensaries/green-leaf-detroit -> "Green Leaf Detroit"
func DispensaryNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		switch parts[i] {
		case "dispensaries", "dispensary", "deliveries", "stores":
			return titleSlug(parts[i+1])
		}
	}
	return ""
}

func titleSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
