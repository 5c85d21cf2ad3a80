package models

import (
	"time"

	"github.com/google/uuid"
)

// QRContentType represents the kind of content carried by a QR code or pasted string
type QRContentType string

const (
	QRContentPaymentLink QRContentType = "payment_link"
	QRContentURL         QRContentType = "url"
	QRContentText        QRContentType = "text"
	QRContentEmpty       QRContentType = "empty"
)

// QRScanRequest represents a request to scan a decoded QR string
type QRScanRequest struct {
	// Raw decoded content, already trimmed by the caller
	Content string `json:"content"`
	// Device context
	DeviceID string `json:"device_id,omitempty"`
	// Source app that initiated scan
	SourceApp string `json:"source_app,omitempty"`
}

// QRScanResult represents the outcome of scanning a QR string
type QRScanResult struct {
	ID          uuid.UUID     `json:"id"`
	RawContent  string        `json:"raw_content"`
	ContentType QRContentType `json:"content_type"`

	// Set for URLs
	Assessment *Assessment   `json:"assessment,omitempty"`
	Insights   *HostInsights `json:"insights,omitempty"`
	OpenURL    string        `json:"open_url,omitempty"`
	Report     *ReportInput  `json:"report,omitempty"`

	// Set for payment deep links
	Payment *PaymentPayload `json:"payment,omitempty"`

	// Display
	Title   string `json:"title"`
	Message string `json:"message"`

	ScannedAt        time.Time     `json:"scanned_at"`
	AnalysisDuration time.Duration `json:"analysis_duration"`
}

// ReportInput is what an external reporting call needs for a URL:
// the exact raw string and the computed score.
type ReportInput struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// QRSecurityStats holds scan counters
type QRSecurityStats struct {
	TotalScans      int64            `json:"total_scans"`
	SuspiciousLinks int64            `json:"suspicious_links"`
	SafeLinks       int64            `json:"safe_links"`
	ByContentType   map[string]int64 `json:"by_content_type"`
	ByRule          map[string]int64 `json:"by_rule"`
	LastScanAt      *time.Time       `json:"last_scan_at,omitempty"`
}
