package model

import (
	"context"
	"math"

	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/pkg/errors"
)

type logistic struct {
	name      string
	intercept float64
	weights   patient.Vector
	threshold float64
}

func newLogistic(name string, a *Artifact) (*logistic, error) {
	if len(a.Coefficients) != patient.FeatureCount {
		return nil, errors.Wrapf(ErrModelUnavailable, "logistic model has %d coefficients, want %d",
			len(a.Coefficients), patient.FeatureCount)
	}

	l := &logistic{
		name:      name,
		intercept: a.Intercept,
		threshold: defaultThreshold,
	}
	copy(l.weights[:], a.Coefficients)

	if a.Threshold != nil {
		t := *a.Threshold
		if t <= 0 || t >= 1 {
			return nil, errors.Wrapf(ErrModelUnavailable, "threshold %v must be within (0, 1)", t)
		}
		l.threshold = t
	}
	return l, nil
}

func (l *logistic) Name() string {
	return l.name
}

func (l *logistic) Predict(_ context.Context, v patient.Vector) (int, error) {
	if err := checkFinite(v); err != nil {
		return 0, err
	}
	if l.probability(v) >= l.threshold {
		return 1, nil
	}
	return 0, nil
}

func (l *logistic) probability(v patient.Vector) float64 {
	z := l.intercept
	for i, w := range l.weights {
		z += w * v[i]
	}
	return 1 / (1 + math.Exp(-z))
}
