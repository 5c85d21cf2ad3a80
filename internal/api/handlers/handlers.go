package handlers

import (
	"qrguard-lab/internal/domain/services"
	"qrguard-lab/internal/infrastructure/cache"
	"qrguard-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health  *HealthHandler
	QR      *QRSecurityHandler
	URL     *URLHandler
	Payment *PaymentHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	QRService         *services.QRSecurityService
	Recorder          ScanRecorder
	Cache             *cache.RedisCache
	PaymentLinkPrefix string
	Version           string
	Logger            *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	assessor := deps.QRService.Assessor()

	return &Handlers{
		Health:  NewHealthHandler(deps.Cache, deps.Version, assessor.Weights().Version, deps.Logger),
		QR:      NewQRSecurityHandler(deps.QRService, deps.Recorder, deps.Logger),
		URL:     NewURLHandler(assessor, deps.Logger),
		Payment: NewPaymentHandler(deps.PaymentLinkPrefix, deps.Logger),
	}
}
