package services

import (
	"math"

	"qrguard-lab/internal/domain/models"
)

// Score applies the logistic model to a feature vector.
// Only the overlapping prefix of features and coefficients contributes.
func Score(features []float64, w models.Weights) float64 {
	z := w.Bias

	n := len(features)
	if len(w.Coefficients) < n {
		n = len(w.Coefficients)
	}
	for i := 0; i < n; i++ {
		z += w.Coefficients[i] * features[i]
	}

	return sigmoid(z)
}

// sigmoid maps z into [0,1]. NaN maps to 1 so a broken input fails closed.
func sigmoid(z float64) float64 {
	if math.IsNaN(z) {
		return 1.0
	}
	return clamp(1.0/(1.0+math.Exp(-z)), 0, 1)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
