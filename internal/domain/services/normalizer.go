package services

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"qrguard-lab/internal/domain/models"
)

// Normalize lowercases raw and extracts a best-effort host.
// It is total: a string that cannot be parsed yields HasHost=false.
func Normalize(raw string) models.NormalizedURL {
	n := models.NormalizedURL{
		Raw:   raw,
		Lower: strings.ToLower(raw),
	}

	if host, ok := extractHost(raw); ok {
		n.Host = host
		n.HasHost = true
	}

	return n
}

// extractHost parses raw as-is first, then retries with an http:// prefix
// for scheme-less input such as "example.com/login". Input that already
// carries "://" is never retried: its authority is either valid or absent.
func extractHost(raw string) (string, bool) {
	if host := parseHost(raw); host != "" {
		return host, true
	}
	if strings.Contains(raw, "://") {
		return "", false
	}
	if host := parseHost("http://" + raw); host != "" {
		return host, true
	}
	return "", false
}

// parseHost returns the lowercase host of s without port or one trailing
// root dot, or "" on failure
func parseHost(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// InspectHost resolves display-only registrable-domain details for host.
// IP literals and empty hosts return nil.
func InspectHost(host string) *models.HostInsights {
	if host == "" || net.ParseIP(host) != nil || isIPLiteral(host) {
		return nil
	}

	insights := &models.HostInsights{
		IsPunycode: strings.Contains(host, "xn--"),
	}

	asciiHost := host
	if converted, err := idna.Lookup.ToASCII(host); err == nil && converted != "" {
		asciiHost = converted
	}
	if unicodeHost, err := idna.Lookup.ToUnicode(asciiHost); err == nil && unicodeHost != asciiHost {
		insights.UnicodeHost = unicodeHost
	}

	insights.PublicSuffix, insights.IsICANNSuffix = publicsuffix.PublicSuffix(asciiHost)
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(asciiHost); err == nil {
		insights.RegistrableDomain = etld1
	}

	return insights
}
