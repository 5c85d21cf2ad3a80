package services

import (
	"strings"
	"unicode/utf8"

	"qrguard-lab/internal/domain/models"
)

// Rule thresholds
const (
	maxURLLength    = 150
	maxHostHyphens  = 3
	maxHostLabels   = 4
	plainHTTPPrefix = "http://"
)

type vetoRule struct {
	id    models.RuleID
	check func(n models.NormalizedURL) bool
}

// vetoRules are evaluated in order; any single match flags the URL
var vetoRules = []vetoRule{
	{models.RuleNoHost, func(n models.NormalizedURL) bool {
		return !n.HasHost
	}},
	{models.RulePlainHTTP, func(n models.NormalizedURL) bool {
		return strings.HasPrefix(n.Lower, plainHTTPPrefix)
	}},
	{models.RuleBlockedTLD, func(n models.NormalizedURL) bool {
		return n.HasHost && hasBlockedTLD(n.Host)
	}},
	{models.RuleExcessiveLength, func(n models.NormalizedURL) bool {
		return utf8.RuneCountInString(n.Lower) > maxURLLength
	}},
	{models.RuleExcessiveHyphens, func(n models.NormalizedURL) bool {
		return strings.Count(n.Host, "-") > maxHostHyphens
	}},
	{models.RuleIPLiteralHost, func(n models.NormalizedURL) bool {
		return n.HasHost && isIPLiteral(n.Host)
	}},
	{models.RuleSuspiciousKeyword, func(n models.NormalizedURL) bool {
		return containsAny(n.Lower, models.SuspiciousKeywords)
	}},
	{models.RuleExcessiveSubdomain, func(n models.NormalizedURL) bool {
		return labelCount(n.Host) > maxHostLabels
	}},
	{models.RulePercentEncoding, func(n models.NormalizedURL) bool {
		return strings.Contains(n.Lower, "%")
	}},
	{models.RuleAtSymbol, func(n models.NormalizedURL) bool {
		return strings.Contains(n.Lower, "@")
	}},
}

// EvaluateRules reports whether any veto rule flags n, and the first one that did
func EvaluateRules(n models.NormalizedURL) (bool, models.RuleID) {
	for _, r := range vetoRules {
		if r.check(n) {
			return true, r.id
		}
	}
	return false, models.RuleNone
}

// TriggeredRules returns every veto rule that flags n, in evaluation order
func TriggeredRules(n models.NormalizedURL) []models.RuleID {
	var triggered []models.RuleID
	for _, r := range vetoRules {
		if r.check(n) {
			triggered = append(triggered, r.id)
		}
	}
	return triggered
}

// RuleIDs lists all veto rules in evaluation order
func RuleIDs() []models.RuleID {
	ids := make([]models.RuleID, 0, len(vetoRules))
	for _, r := range vetoRules {
		ids = append(ids, r.id)
	}
	return ids
}
