package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"qrguard-lab/internal/domain/models"
)

func TestScore_BiasOnly(t *testing.T) {
	var zero models.FeatureVector
	score := Score(zero.Slice(), DefaultWeights())

	assert.InDelta(t, 1.0/(1.0+math.Exp(2.0)), score, 1e-12)
}

func TestScore_OverlappingPrefix(t *testing.T) {
	w := models.Weights{Coefficients: []float64{1, 1}, Bias: 0}

	assert.InDelta(t, 1.0/(1.0+math.Exp(-2.0)), Score([]float64{1, 1, 100, 100}, w), 1e-12)
	assert.InDelta(t, 1.0/(1.0+math.Exp(-1.0)), Score([]float64{1}, w), 1e-12)
	assert.InDelta(t, 0.5, Score(nil, w), 1e-12)
}

func TestScore_AlwaysInUnitRange(t *testing.T) {
	w := models.Weights{Coefficients: []float64{1}, Bias: 0}

	for _, f := range []float64{-1e308, -1000, 0, 1000, 1e308, math.Inf(1), math.Inf(-1), math.NaN()} {
		s := Score([]float64{f}, w)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestScore_NaNFailsClosed(t *testing.T) {
	w := models.Weights{Coefficients: []float64{1}, Bias: 0}
	assert.Equal(t, 1.0, Score([]float64{math.NaN()}, w))
}

func TestScore_Deterministic(t *testing.T) {
	features := ExtractURLFeatures(Normalize("http://203.0.113.5/login")).Slice()
	w := DefaultWeights()

	assert.Equal(t, Score(features, w), Score(features, w))
}

func TestScore_MonotonicInSuspiciousWords(t *testing.T) {
	w := DefaultWeights()
	base := ExtractURLFeatures(Normalize("https://example.com"))

	prev := -1.0
	for count := 0; count <= 9; count++ {
		v := base
		v[models.FeatureSuspiciousWords] = float64(count)
		s := Score(v.Slice(), w)
		assert.GreaterOrEqual(t, s, prev, "count=%d", count)
		prev = s
	}
}
