package handlers

import (
	"encoding/json"
	"net/http"

	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/domain/services"
	"qrguard-lab/pkg/logger"
)

// URLHandler exposes the URL risk model
type URLHandler struct {
	assessor *services.Assessor
	logger   *logger.Logger
}

// NewURLHandler creates a new URL handler
func NewURLHandler(assessor *services.Assessor, log *logger.Logger) *URLHandler {
	return &URLHandler{
		assessor: assessor,
		logger:   log.WithComponent("url-handler"),
	}
}

// AssessResponse explains a single assessment
type AssessResponse struct {
	URL        string               `json:"url"`
	Assessment models.Assessment    `json:"assessment"`
	Features   map[string]float64   `json:"features"`
	Normalized models.NormalizedURL `json:"normalized"`
	Insights   *models.HostInsights `json:"insights,omitempty"`
}

// Assess handles POST /api/v1/url/assess.
// Any string is accepted, including an empty one, which is flagged.
func (h *URLHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assessment, features := h.assessor.Explain(req.URL)
	normalized := services.Normalize(req.URL)

	resp := AssessResponse{
		URL:        req.URL,
		Assessment: assessment,
		Features:   features.Map(),
		Normalized: normalized,
	}
	if normalized.HasHost {
		resp.Insights = services.InspectHost(normalized.Host)
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GetModel handles GET /api/v1/model
func (h *URLHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	weights := h.assessor.Weights()

	coefficients := make([]map[string]interface{}, 0, len(weights.Coefficients))
	for i, c := range weights.Coefficients {
		name := "unused"
		if i < models.FeatureCount {
			name = models.FeatureNames[i]
		}
		coefficients = append(coefficients, map[string]interface{}{
			"index":   i,
			"feature": name,
			"weight":  c,
		})
	}

	rules := make([]map[string]string, 0)
	for _, id := range services.RuleIDs() {
		rules = append(rules, map[string]string{
			"id":          string(id),
			"description": models.RuleDescriptions[id],
		})
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":      weights.Version,
		"bias":         weights.Bias,
		"threshold":    h.assessor.Threshold(),
		"coefficients": coefficients,
		"rules":        rules,
	})
}

func (h *URLHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *URLHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
