package services

import (
	"qrguard-lab/internal/domain/models"
	"qrguard-lab/pkg/logger"
)

// Assess runs the full pipeline for raw: normalization, feature scoring and
// the veto rules, combined with a logical OR. It never fails; an unparsable
// input is flagged through the no-host rule.
func Assess(raw string, w models.Weights, threshold float64) models.Assessment {
	a, _ := assess(raw, w, threshold)
	return a
}

func assess(raw string, w models.Weights, threshold float64) (models.Assessment, models.FeatureVector) {
	n := Normalize(raw)
	features := ExtractURLFeatures(n)
	score := Score(features.Slice(), w)
	triggered := TriggeredRules(n)

	a := models.Assessment{
		Score:          score,
		TriggeredRules: triggered,
		Threshold:      threshold,
		ModelVersion:   w.Version,
	}
	if len(triggered) > 0 {
		a.RuleTriggered = true
		a.Rule = triggered[0]
	}
	a.IsSuspicious = a.RuleTriggered || score >= threshold

	return a, features
}

// AssessmentObserver receives every assessment an Assessor produces
type AssessmentObserver interface {
	ObserveAssessment(a models.Assessment)
}

// Assessor binds a weight table and threshold to the assessment pipeline.
// It is safe for concurrent use; its weights are never modified.
type Assessor struct {
	weights   models.Weights
	threshold float64
	observer  AssessmentObserver
	logger    *logger.Logger
}

// NewAssessor creates an Assessor
func NewAssessor(w models.Weights, threshold float64, log *logger.Logger) *Assessor {
	a := &Assessor{
		weights:   copyWeights(w),
		threshold: threshold,
		logger:    log.WithComponent("assessor"),
	}

	if len(w.Coefficients) != models.FeatureCount {
		a.logger.Warn().
			Int("coefficients", len(w.Coefficients)).
			Int("features", models.FeatureCount).
			Msg("weight table length differs from feature count, scoring uses the overlap")
	}

	return a
}

// SetObserver registers an observer, e.g. a metrics collector
func (a *Assessor) SetObserver(o AssessmentObserver) {
	a.observer = o
}

// Assess evaluates raw with the bound weights and threshold
func (a *Assessor) Assess(raw string) models.Assessment {
	result, _ := a.Explain(raw)
	return result
}

// Explain evaluates raw and also returns the feature vector behind the score
func (a *Assessor) Explain(raw string) (models.Assessment, models.FeatureVector) {
	result, features := assess(raw, a.weights, a.threshold)

	a.logger.Debug().
		Int("length", len(raw)).
		Float64("score", result.Score).
		Bool("suspicious", result.IsSuspicious).
		Str("rule", string(result.Rule)).
		Msg("assessed URL")

	if a.observer != nil {
		a.observer.ObserveAssessment(result)
	}

	return result, features
}

// Weights returns a copy of the bound weight table
func (a *Assessor) Weights() models.Weights {
	return copyWeights(a.weights)
}

// Threshold returns the decision threshold
func (a *Assessor) Threshold() float64 {
	return a.threshold
}
