package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/infrastructure/cache"
	"qrguard-lab/pkg/logger"
)

// Display strings shown to the person who scanned the code
const (
	TitleSuspicious = "Suspicious Link"
	TitleSafe       = "Open Link?"
	TitlePayment    = "Payment Link"
	TitleText       = "Scanned Text"

	MessageSuspiciousPrefix = "Suspicious Link!\n"
	MessageSafePrefix       = "Safe Link\n"
	MessageTextPrefix       = "Scanned Text:\n\n"
	MessageEmpty            = "Please paste a link to check."
)

// ErrNilRequest is returned when Scan is called without a request
var ErrNilRequest = errors.New("scan request is nil")

// ResultCache stores assessments keyed by input, model version and threshold.
// GetJSON reports an absent key with an error matching cache.IsMiss.
// *cache.RedisCache satisfies it.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// QRSecurityConfig holds scan service settings
type QRSecurityConfig struct {
	PaymentLinkPrefix string
	CacheTTL          time.Duration
}

// QRSecurityService classifies decoded QR strings and assesses the links in them
type QRSecurityService struct {
	assessor *Assessor
	cache    ResultCache
	config   QRSecurityConfig
	logger   *logger.Logger

	// In-memory stats
	mu    sync.RWMutex
	stats models.QRSecurityStats
}

// NewQRSecurityService creates a new QR security service. cache may be nil.
func NewQRSecurityService(assessor *Assessor, resultCache ResultCache, cfg QRSecurityConfig, log *logger.Logger) *QRSecurityService {
	return &QRSecurityService{
		assessor: assessor,
		cache:    resultCache,
		config:   cfg,
		logger:   log.WithComponent("qr-security"),
		stats: models.QRSecurityStats{
			ByContentType: make(map[string]int64),
			ByRule:        make(map[string]int64),
		},
	}
}

// Scan classifies the request content and builds the verdict to display
func (s *QRSecurityService) Scan(ctx context.Context, req *models.QRScanRequest) (*models.QRScanResult, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	startTime := time.Now()
	content := strings.TrimSpace(req.Content)

	result := &models.QRScanResult{
		ID:          uuid.New(),
		RawContent:  content,
		ContentType: ClassifyContent(content, s.config.PaymentLinkPrefix),
		ScannedAt:   startTime,
	}

	switch result.ContentType {
	case models.QRContentEmpty:
		result.Message = MessageEmpty
	case models.QRContentPaymentLink:
		payload := ParsePayload(content)
		result.Payment = &payload
		result.Title = TitlePayment
		result.Message = payload.String()
	case models.QRContentURL:
		s.analyzeURL(ctx, result)
	default:
		result.Title = TitleText
		result.Message = MessageTextPrefix + content
	}

	result.AnalysisDuration = time.Since(startTime)
	s.updateStats(result)

	s.logger.WithScanID(result.ID.String()).Debug().
		Str("device_id", req.DeviceID).
		Str("content_type", string(result.ContentType)).
		Dur("duration", result.AnalysisDuration).
		Msg("scan completed")

	return result, nil
}

// AssessURL assesses a single raw URL, using the result cache when configured
func (s *QRSecurityService) AssessURL(ctx context.Context, raw string) models.Assessment {
	if s.cache == nil {
		return s.assessor.Assess(raw)
	}

	key := s.cacheKey(raw)
	var cached models.Assessment
	err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached
	}
	if !cache.IsMiss(err) {
		s.logger.Warn().Err(err).Msg("cache lookup failed, assessing directly")
	}

	assessment := s.assessor.Assess(raw)
	if err := s.cache.SetJSON(ctx, key, assessment, s.config.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache assessment")
	}
	return assessment
}

func (s *QRSecurityService) analyzeURL(ctx context.Context, result *models.QRScanResult) {
	raw := result.RawContent
	assessment := s.AssessURL(ctx, raw)

	result.Assessment = &assessment
	result.OpenURL = OpenURL(raw)
	result.Report = &models.ReportInput{URL: raw, Score: assessment.Score}

	if n := Normalize(raw); n.HasHost {
		result.Insights = InspectHost(n.Host)
	}

	if assessment.IsSuspicious {
		result.Title = TitleSuspicious
		result.Message = MessageSuspiciousPrefix + raw
	} else {
		result.Title = TitleSafe
		result.Message = MessageSafePrefix + raw
	}
}

// cacheKey includes the model version and threshold of the bound assessor
func (s *QRSecurityService) cacheKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("assessment:%s:%g:%s",
		s.assessor.Weights().Version, s.assessor.Threshold(), hex.EncodeToString(sum[:]))
}

// ClassifyContent decides how a decoded string is treated.
// Payment links are matched on the exact prefix; URLs are detected loosely.
func ClassifyContent(content, paymentPrefix string) models.QRContentType {
	switch {
	case content == "":
		return models.QRContentEmpty
	case IsPaymentLink(content, paymentPrefix):
		return models.QRContentPaymentLink
	case LooksLikeURL(content):
		return models.QRContentURL
	default:
		return models.QRContentText
	}
}

// LooksLikeURL reports whether s should be treated as a link, even without a scheme
func LooksLikeURL(s string) bool {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return true
	}
	if strings.Contains(lower, ".") && !strings.Contains(lower, " ") {
		return true
	}
	return containsAny(lower, models.URLShorteners)
}

// OpenURL returns the destination to open for raw, keeping its casing.
// Scheme-less input gets https://.
func OpenURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://" + raw
}

func (s *QRSecurityService) updateStats(result *models.QRScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalScans++
	s.stats.ByContentType[string(result.ContentType)]++

	if a := result.Assessment; a != nil {
		if a.IsSuspicious {
			s.stats.SuspiciousLinks++
		} else {
			s.stats.SafeLinks++
		}
		for _, rule := range a.TriggeredRules {
			s.stats.ByRule[string(rule)]++
		}
	}

	scannedAt := result.ScannedAt
	s.stats.LastScanAt = &scannedAt
}

// GetStats returns scan statistics
func (s *QRSecurityService) GetStats() *models.QRSecurityStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy
	stats := s.stats
	stats.ByContentType = make(map[string]int64, len(s.stats.ByContentType))
	stats.ByRule = make(map[string]int64, len(s.stats.ByRule))

	for k, v := range s.stats.ByContentType {
		stats.ByContentType[k] = v
	}
	for k, v := range s.stats.ByRule {
		stats.ByRule[k] = v
	}
	if s.stats.LastScanAt != nil {
		t := *s.stats.LastScanAt
		stats.LastScanAt = &t
	}

	return &stats
}

// GetContentTypes returns all content types a scan can produce
func (s *QRSecurityService) GetContentTypes() []models.QRContentType {
	return []models.QRContentType{
		models.QRContentPaymentLink,
		models.QRContentURL,
		models.QRContentText,
		models.QRContentEmpty,
	}
}

// Assessor exposes the bound assessor
func (s *QRSecurityService) Assessor() *Assessor {
	return s.assessor
}
