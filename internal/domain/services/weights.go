package services

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"qrguard-lab/internal/domain/models"
)

//go:embed data/weights_v1.yaml
var embeddedWeights []byte

var defaultWeights = mustDecodeWeights(embeddedWeights)

// ErrInvalidWeights is returned for weight tables that cannot be used for scoring
var ErrInvalidWeights = errors.New("invalid weight table")

// DefaultWeights returns a copy of the embedded weight table
func DefaultWeights() models.Weights {
	return copyWeights(defaultWeights)
}

// LoadWeights reads a weight table from a YAML file
func LoadWeights(path string) (models.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Weights{}, fmt.Errorf("failed to read weights file: %w", err)
	}
	return DecodeWeights(data)
}

// DecodeWeights parses and validates a YAML weight table.
// A coefficient count other than models.FeatureCount is accepted; scoring
// then uses the overlapping prefix.
func DecodeWeights(data []byte) (models.Weights, error) {
	var w models.Weights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return models.Weights{}, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if len(w.Coefficients) == 0 {
		return models.Weights{}, fmt.Errorf("%w: no coefficients", ErrInvalidWeights)
	}
	if !isFinite(w.Bias) {
		return models.Weights{}, fmt.Errorf("%w: bias is not finite", ErrInvalidWeights)
	}
	for i, c := range w.Coefficients {
		if !isFinite(c) {
			return models.Weights{}, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidWeights, i)
		}
	}
	if w.Version == "" {
		w.Version = "custom"
	}
	return w, nil
}

func mustDecodeWeights(data []byte) models.Weights {
	w, err := DecodeWeights(data)
	if err != nil {
		panic(fmt.Sprintf("embedded weights: %v", err))
	}
	return w
}

func copyWeights(w models.Weights) models.Weights {
	out := w
	out.Coefficients = append([]float64(nil), w.Coefficients...)
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
