package services

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"qrguard-lab/internal/domain/models"
)

var ipLiteralPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+\.[0-9]+$`)

// ExtractFeatures derives the fixed-length feature vector for a URL.
// lower is the lowercased input; host-based features stay 0 when hasHost is false.
func ExtractFeatures(lower, host string, hasHost bool) models.FeatureVector {
	var v models.FeatureVector

	v[models.FeatureLength] = math.Min(float64(utf8.RuneCountInString(lower))/200.0, 1.0)
	v[models.FeatureHasHTTP] = boolToFloat(strings.HasPrefix(lower, "http://"))

	if hasHost {
		v[models.FeatureHasIP] = boolToFloat(isIPLiteral(host))
		v[models.FeatureDotCount] = math.Min(float64(labelCount(host))/6.0, 1.0)
		v[models.FeatureHyphenCount] = math.Min(float64(strings.Count(host, "-"))/6.0, 1.0)
		v[models.FeatureBadTLD] = boolToFloat(hasBlockedTLD(host))
		v[models.FeatureDigitRatio] = digitRatio(host)
	}

	v[models.FeaturePercentEncoded] = boolToFloat(strings.Contains(lower, "%"))
	v[models.FeatureContainsAt] = boolToFloat(strings.Contains(lower, "@"))
	v[models.FeatureShortener] = boolToFloat(containsAny(lower, models.URLShorteners))
	v[models.FeatureSuspiciousWords] = float64(countKeywords(lower))
	v[models.FeatureReserved] = 0

	return v
}

// ExtractURLFeatures is ExtractFeatures over an already normalized URL
func ExtractURLFeatures(n models.NormalizedURL) models.FeatureVector {
	return ExtractFeatures(n.Lower, n.Host, n.HasHost)
}

func isIPLiteral(host string) bool {
	return ipLiteralPattern.MatchString(host)
}

// labelCount counts dot-separated labels, ignoring trailing empty labels
// ("a.b." has 2, "..." has 0).
func labelCount(host string) int {
	if host == "" {
		return 0
	}
	parts := strings.Split(host, ".")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return len(parts)
}

func hasBlockedTLD(host string) bool {
	for _, tld := range models.BlockedTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// countKeywords counts distinct suspicious keywords present in s
func countKeywords(s string) int {
	count := 0
	for _, word := range models.SuspiciousKeywords {
		if strings.Contains(s, word) {
			count++
		}
	}
	return count
}

func digitRatio(host string) float64 {
	total := 0
	digits := 0
	for _, r := range host {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
