package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/infrastructure/cache"
	"qrguard-lab/pkg/logger"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	gets  int
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	data, ok := c.items[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func newTestQRService(rc ResultCache) *QRSecurityService {
	log := logger.NewNop()
	return NewQRSecurityService(
		NewAssessor(DefaultWeights(), 0.5, log),
		rc,
		QRSecurityConfig{PaymentLinkPrefix: "upi://pay", CacheTTL: time.Minute},
		log,
	)
}

func TestQRSecurityService_ScanSuspiciousURL(t *testing.T) {
	svc := newTestQRService(nil)

	result, err := svc.Scan(context.Background(), &models.QRScanRequest{Content: "http://example.tk/login"})
	require.NoError(t, err)

	assert.Equal(t, models.QRContentURL, result.ContentType)
	require.NotNil(t, result.Assessment)
	assert.True(t, result.Assessment.IsSuspicious)
	assert.Equal(t, TitleSuspicious, result.Title)
	assert.Equal(t, "Suspicious Link!\nhttp://example.tk/login", result.Message)
	assert.Equal(t, "http://example.tk/login", result.OpenURL)
	require.NotNil(t, result.Report)
	assert.Equal(t, "http://example.tk/login", result.Report.URL)
	assert.Equal(t, result.Assessment.Score, result.Report.Score)
	assert.NotEqual(t, [16]byte{}, [16]byte(result.ID))
}

func TestQRSecurityService_ScanSafeSchemelessURL(t *testing.T) {
	svc := newTestQRService(nil)

	result, err := svc.Scan(context.Background(), &models.QRScanRequest{Content: "  Example.com/Docs  "})
	require.NoError(t, err)

	assert.Equal(t, models.QRContentURL, result.ContentType)
	assert.False(t, result.Assessment.IsSuspicious)
	assert.Equal(t, TitleSafe, result.Title)
	assert.Equal(t, "Safe Link\nExample.com/Docs", result.Message)
	assert.Equal(t, "https://Example.com/Docs", result.OpenURL)
	require.NotNil(t, result.Insights)
	assert.Equal(t, "example.com", result.Insights.RegistrableDomain)
}

func TestQRSecurityService_ScanPaymentLink(t *testing.T) {
	svc := newTestQRService(nil)

	result, err := svc.Scan(context.Background(), &models.QRScanRequest{
		Content: "upi://pay?pa=merchant@bank&pn=John%20Doe&am=100",
	})
	require.NoError(t, err)

	assert.Equal(t, models.QRContentPaymentLink, result.ContentType)
	assert.Nil(t, result.Assessment)
	require.NotNil(t, result.Payment)
	assert.Equal(t, []string{"VPA: merchant@bank", "Name: John Doe", "Amount: 100"}, result.Payment.Lines())
	assert.Equal(t, TitlePayment, result.Title)
	assert.Equal(t, result.Payment.String(), result.Message)
}

func TestQRSecurityService_ScanTextAndEmpty(t *testing.T) {
	svc := newTestQRService(nil)

	text, err := svc.Scan(context.Background(), &models.QRScanRequest{Content: "meet me at noon"})
	require.NoError(t, err)
	assert.Equal(t, models.QRContentText, text.ContentType)
	assert.Equal(t, "Scanned Text:\n\nmeet me at noon", text.Message)
	assert.Nil(t, text.Assessment)

	empty, err := svc.Scan(context.Background(), &models.QRScanRequest{Content: "   "})
	require.NoError(t, err)
	assert.Equal(t, models.QRContentEmpty, empty.ContentType)
	assert.Equal(t, MessageEmpty, empty.Message)
}

func TestQRSecurityService_ScanNilRequest(t *testing.T) {
	_, err := newTestQRService(nil).Scan(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilRequest)
}

func TestQRSecurityService_AssessURLUsesCache(t *testing.T) {
	rc := newMemoryCache()
	svc := newTestQRService(rc)
	ctx := context.Background()

	first := svc.AssessURL(ctx, "https://203.0.113.5/verify")
	second := svc.AssessURL(ctx, "https://203.0.113.5/verify")

	assert.Equal(t, first, second)
	assert.Equal(t, 2, rc.gets)
	assert.Equal(t, 1, rc.sets)
	assert.Len(t, rc.items, 1)
	for key := range rc.items {
		assert.Contains(t, key, "assessment:v1:0.5:")
	}
}

type failingCache struct{ err error }

func (c failingCache) GetJSON(context.Context, string, any) error { return c.err }

func (c failingCache) SetJSON(context.Context, string, any, time.Duration) error { return c.err }

func TestQRSecurityService_AssessURLLogsCacheFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		logged bool
	}{
		{"miss is silent", cache.ErrMiss, false},
		{"redis failure is logged", errors.New("dial tcp: connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(logger.Config{Level: "warn", Format: "json", Output: &buf})
			svc := NewQRSecurityService(
				NewAssessor(DefaultWeights(), 0.5, log),
				failingCache{err: tt.err},
				QRSecurityConfig{PaymentLinkPrefix: "upi://pay"},
				log,
			)

			a := svc.AssessURL(context.Background(), "https://example.tk")
			assert.True(t, a.IsSuspicious)
			assert.Equal(t, tt.logged, strings.Contains(buf.String(), "cache lookup failed"))
		})
	}
}

func TestQRSecurityService_Stats(t *testing.T) {
	svc := newTestQRService(nil)
	ctx := context.Background()

	for _, content := range []string{
		"http://example.tk/login",
		"https://example.com",
		"upi://pay?pa=a@b",
		"just words",
	} {
		_, err := svc.Scan(ctx, &models.QRScanRequest{Content: content})
		require.NoError(t, err)
	}

	stats := svc.GetStats()
	assert.Equal(t, int64(4), stats.TotalScans)
	assert.Equal(t, int64(1), stats.SuspiciousLinks)
	assert.Equal(t, int64(1), stats.SafeLinks)
	assert.Equal(t, int64(2), stats.ByContentType[string(models.QRContentURL)])
	assert.Equal(t, int64(1), stats.ByContentType[string(models.QRContentPaymentLink)])
	assert.Equal(t, int64(1), stats.ByContentType[string(models.QRContentText)])
	assert.Equal(t, int64(1), stats.ByRule[string(models.RuleBlockedTLD)])
	require.NotNil(t, stats.LastScanAt)

	// returned stats are a copy
	stats.ByContentType["url"] = 100
	assert.Equal(t, int64(2), svc.GetStats().ByContentType["url"])
}

func TestClassifyContent(t *testing.T) {
	tests := []struct {
		content string
		want    models.QRContentType
	}{
		{"", models.QRContentEmpty},
		{"upi://pay?pa=x", models.QRContentPaymentLink},
		{"UPI://pay?pa=x", models.QRContentText},
		{"https://example.com", models.QRContentURL},
		{"HTTP://EXAMPLE.COM", models.QRContentURL},
		{"example.com", models.QRContentURL},
		{"hello world", models.QRContentText},
		{"see bit.ly/abc now", models.QRContentURL},
		{"WIFI:S:home;T:WPA;P:secret;;", models.QRContentText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyContent(tt.content, "upi://pay"), tt.content)
	}
}

func TestOpenURL(t *testing.T) {
	assert.Equal(t, "https://Example.com", OpenURL("Example.com"))
	assert.Equal(t, "http://example.com", OpenURL("http://example.com"))
	assert.Equal(t, "https://example.com", OpenURL("https://example.com"))
}
