package handlers

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/domain/services"
	"qrguard-lab/pkg/logger"
)

// maxBatchItems bounds a single batch scan request
const maxBatchItems = 50

// ScanRecorder is notified of every completed scan
type ScanRecorder interface {
	RecordScan(contentType models.QRContentType)
}

// QRSecurityHandler handles QR code security API requests
type QRSecurityHandler struct {
	service  *services.QRSecurityService
	recorder ScanRecorder
	logger   *logger.Logger
}

// NewQRSecurityHandler creates a new QR security handler. recorder may be nil.
func NewQRSecurityHandler(service *services.QRSecurityService, recorder ScanRecorder, log *logger.Logger) *QRSecurityHandler {
	return &QRSecurityHandler{
		service:  service,
		recorder: recorder,
		logger:   log.WithComponent("qr-security-handler"),
	}
}

// Scan handles POST /api/v1/qr/scan
func (h *QRSecurityHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.QRScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		h.respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	result, err := h.scan(r, &req)
	if err != nil {
		h.logger.WithRequestID(chimiddleware.GetReqID(r.Context())).Error().Err(err).Msg("failed to scan QR content")
		h.respondError(w, http.StatusInternalServerError, "failed to scan QR content")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ScanBatch handles POST /api/v1/qr/scan/batch
func (h *QRSecurityHandler) ScanBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []models.QRScanRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		h.respondError(w, http.StatusBadRequest, "items is required")
		return
	}

	if len(req.Items) > maxBatchItems {
		h.respondError(w, http.StatusBadRequest, "maximum 50 items allowed")
		return
	}

	results := make([]*models.QRScanResult, 0, len(req.Items))
	suspicious := 0
	for i := range req.Items {
		result, err := h.scan(r, &req.Items[i])
		if err != nil {
			h.logger.Warn().Err(err).Int("index", i).Msg("failed to scan QR content in batch")
			continue
		}
		if result.Assessment != nil && result.Assessment.IsSuspicious {
			suspicious++
		}
		results = append(results, result)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":    results,
		"processed":  len(results),
		"suspicious": suspicious,
		"total":      len(req.Items),
	})
}

func (h *QRSecurityHandler) scan(r *http.Request, req *models.QRScanRequest) (*models.QRScanResult, error) {
	result, err := h.service.Scan(r.Context(), req)
	if err != nil {
		return nil, err
	}
	if h.recorder != nil {
		h.recorder.RecordScan(result.ContentType)
	}
	return result, nil
}

// GetContentTypes handles GET /api/v1/qr/content-types
func (h *QRSecurityHandler) GetContentTypes(w http.ResponseWriter, r *http.Request) {
	types := h.service.GetContentTypes()

	typeInfo := make([]map[string]string, 0, len(types))
	descriptions := map[models.QRContentType]string{
		models.QRContentPaymentLink: "Payment deep link, broken down into its fields",
		models.QRContentURL:         "Web link, with or without a scheme",
		models.QRContentText:        "Plain text content",
		models.QRContentEmpty:       "Nothing to check",
	}

	for _, t := range types {
		typeInfo = append(typeInfo, map[string]string{
			"type":        string(t),
			"description": descriptions[t],
		})
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"content_types": typeInfo,
		"count":         len(typeInfo),
	})
}

// GetIndicators handles GET /api/v1/qr/indicators
func (h *QRSecurityHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"blocked_tlds":        models.BlockedTLDs,
		"url_shorteners":      models.URLShorteners,
		"suspicious_keywords": models.SuspiciousKeywords,
	})
}

// GetStats handles GET /api/v1/qr/stats
func (h *QRSecurityHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.GetStats()
	h.respondJSON(w, http.StatusOK, stats)
}

func (h *QRSecurityHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *QRSecurityHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
