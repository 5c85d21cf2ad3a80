package models

// FeatureCount is the fixed length of a URL feature vector
const FeatureCount = 12

// Feature indices, in model order
const (
	FeatureLength = iota
	FeatureHasHTTP
	FeatureHasIP
	FeatureDotCount
	FeatureHyphenCount
	FeatureBadTLD
	FeaturePercentEncoded
	FeatureContainsAt
	FeatureShortener
	FeatureSuspiciousWords
	FeatureDigitRatio
	FeatureReserved
)

// FeatureNames labels each feature index for display and weight files
var FeatureNames = [FeatureCount]string{
	"length",
	"has_http",
	"has_ip",
	"dot_count",
	"hyphen_count",
	"bad_tld",
	"percent_encoded",
	"contains_at",
	"shortener",
	"suspicious_words",
	"digit_ratio",
	"reserved",
}

// FeatureVector is the numeric representation of a URL fed to the scorer
type FeatureVector [FeatureCount]float64

// Slice returns the vector as a slice
func (v FeatureVector) Slice() []float64 {
	return v[:]
}

// Map returns the vector keyed by feature name
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		m[name] = v[i]
	}
	return m
}

// NormalizedURL is the lowercase working form of a raw input plus its host.
// Raw keeps the caller's original casing.
type NormalizedURL struct {
	Raw     string `json:"raw"`
	Lower   string `json:"lower"`
	Host    string `json:"host,omitempty"`
	HasHost bool   `json:"has_host"`
}

// Weights is the fixed coefficient table of the logistic scorer
type Weights struct {
	Version      string    `json:"version" yaml:"version"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Bias         float64   `json:"bias" yaml:"bias"`
}

// RuleID names a heuristic veto rule
type RuleID string

const (
	RuleNone               RuleID = ""
	RuleNoHost             RuleID = "no_host"
	RulePlainHTTP          RuleID = "plain_http"
	RuleBlockedTLD         RuleID = "blocked_tld"
	RuleExcessiveLength    RuleID = "excessive_length"
	RuleExcessiveHyphens   RuleID = "excessive_hyphens"
	RuleIPLiteralHost      RuleID = "ip_literal_host"
	RuleSuspiciousKeyword  RuleID = "suspicious_keyword"
	RuleExcessiveSubdomain RuleID = "excessive_subdomains"
	RulePercentEncoding    RuleID = "percent_encoding"
	RuleAtSymbol           RuleID = "at_symbol"
)

// RuleDescriptions explains each rule for API consumers
var RuleDescriptions = map[RuleID]string{
	RuleNoHost:             "URL could not be parsed into a host",
	RulePlainHTTP:          "URL uses plain http instead of https",
	RuleBlockedTLD:         "Host uses a top-level domain often abused for phishing",
	RuleExcessiveLength:    "URL is unusually long",
	RuleExcessiveHyphens:   "Host contains many hyphens",
	RuleIPLiteralHost:      "Host is a raw IP address",
	RuleSuspiciousKeyword:  "URL contains wording common in phishing links",
	RuleExcessiveSubdomain: "Host has many subdomain levels",
	RulePercentEncoding:    "URL contains percent-encoded characters",
	RuleAtSymbol:           "URL contains an @ symbol",
}

// Assessment is the verdict for a single raw string.
// IsSuspicious = RuleTriggered || Score >= Threshold.
type Assessment struct {
	IsSuspicious   bool     `json:"is_suspicious"`
	Score          float64  `json:"score"`
	RuleTriggered  bool     `json:"rule_triggered"`
	Rule           RuleID   `json:"rule,omitempty"`
	TriggeredRules []RuleID `json:"triggered_rules,omitempty"`
	Threshold      float64  `json:"threshold"`
	ModelVersion   string   `json:"model_version,omitempty"`
}

// HostInsights is display-only registrable-domain information
type HostInsights struct {
	RegistrableDomain string `json:"registrable_domain,omitempty"`
	PublicSuffix      string `json:"public_suffix,omitempty"`
	UnicodeHost       string `json:"unicode_host,omitempty"`
	IsPunycode        bool   `json:"is_punycode"`
	IsICANNSuffix     bool   `json:"is_icann_suffix"`
}

// Indicator lists shared by the feature extractor and the rule engine
var (
	BlockedTLDs = []string{".tk", ".xyz", ".top", ".zip", ".info", ".cf", ".ga", ".gq", ".ml"}

	URLShorteners = []string{"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly"}

	SuspiciousKeywords = []string{"free", "login", "verify", "update", "secure", "banking", "gift", "win", "bonus"}
)
