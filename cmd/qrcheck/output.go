package main

import (
	"fmt"

	"github.com/fatih/color"

	"qrguard-lab/internal/domain/models"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
)

func printBanner() {
	_, _ = cyan.Println("════════════════════════════════════════════════")
	_, _ = cyan.Println("  QRGuard link check")
	_, _ = cyan.Println("════════════════════════════════════════════════")
}

func newline() {
	fmt.Println()
}

func printResult(r *models.QRScanResult) {
	switch {
	case r.Assessment != nil && r.Assessment.IsSuspicious:
		_, _ = red.Printf("⚠️  %s\n", r.Title)
	case r.Assessment != nil:
		_, _ = green.Printf("✅ %s\n", r.Title)
	default:
		_, _ = yellow.Printf("ℹ️  %s\n", r.Title)
	}
	fmt.Println(r.Message)

	if a := r.Assessment; a != nil {
		_, _ = faint.Printf("   score %.4f (threshold %.2f, model %s)\n", a.Score, a.Threshold, a.ModelVersion)
		if a.RuleTriggered {
			_, _ = faint.Printf("   rule: %s\n", a.Rule)
		}
		if len(a.TriggeredRules) > 1 {
			_, _ = faint.Printf("   all rules: %v\n", a.TriggeredRules)
		}
	}
	if r.OpenURL != "" {
		_, _ = faint.Printf("   opens: %s\n", r.OpenURL)
	}
	if in := r.Insights; in != nil && in.RegistrableDomain != "" {
		_, _ = faint.Printf("   domain: %s (suffix %s)\n", in.RegistrableDomain, in.PublicSuffix)
		if in.IsPunycode {
			_, _ = yellow.Printf("   punycode host, displays as %s\n", in.UnicodeHost)
		}
	}
}

func printFeatures(features models.FeatureVector) {
	for i, v := range features {
		_, _ = faint.Printf("   %-22s %g\n", models.FeatureNames[i], v)
	}
}

// printRemoteResult prints a scan result decoded from the gRPC response and
// reports whether it was flagged
func printRemoteResult(fields map[string]interface{}) bool {
	title, _ := fields["title"].(string)
	message, _ := fields["message"].(string)

	suspicious := false
	if a, ok := fields["assessment"].(map[string]interface{}); ok {
		suspicious, _ = a["is_suspicious"].(bool)
	}

	if suspicious {
		_, _ = red.Printf("⚠️  %s\n", title)
	} else {
		_, _ = green.Printf("%s\n", title)
	}
	fmt.Println(message)
	return suspicious
}

func printStats(stats *models.QRSecurityStats) {
	_, _ = cyan.Printf("scanned %d, suspicious %d, safe %d\n", stats.TotalScans, stats.SuspiciousLinks, stats.SafeLinks)
}
