package handlers

import (
	"encoding/json"
	"net/http"

	"qrguard-lab/internal/domain/services"
	"qrguard-lab/pkg/logger"
)

// PaymentHandler breaks payment deep links into display fields
type PaymentHandler struct {
	linkPrefix string
	logger     *logger.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(linkPrefix string, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		linkPrefix: linkPrefix,
		logger:     log.WithComponent("payment-handler"),
	}
}

// Parse handles POST /api/v1/payment/parse
func (h *PaymentHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !services.IsPaymentLink(req.Content, h.linkPrefix) {
		h.respondError(w, http.StatusBadRequest, "content is not a payment link")
		return
	}

	payload := services.ParsePayload(req.Content)
	h.logger.Debug().Int("fields", len(payload.Fields)).Msg("parsed payment link")

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payload": payload,
		"lines":   payload.Lines(),
		"text":    payload.String(),
	})
}

func (h *PaymentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PaymentHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
