package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logisticYAML = `
name: test-logistic
kind: logistic
features: [age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal]
intercept: 0
coefficients: [0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0]
threshold: 0.6
`

const logisticJSON = `{
  "name": "test-json",
  "kind": "logistic",
  "features": ["age","sex","cp","trestbps","chol","fbs","restecg","thalach","exang","oldpeak","slope","ca","thal"],
  "intercept": -1,
  "coefficients": [0,0,0,0,0,0,0,0,0,0,0,0,0]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func logisticArtifact(coef []float64) *Artifact {
	return &Artifact{
		Name:         "unit",
		Kind:         KindLogistic,
		Features:     Features(),
		Coefficients: coef,
	}
}

func TestLoad_YAML(t *testing.T) {
	c, err := Load(context.Background(), writeArtifact(t, "m.yaml", logisticYAML), Options{})
	require.NoError(t, err)
	assert.Equal(t, "test-logistic", c.Name())

	// sigmoid(cp) >= 0.6 only once cp is at least 1
	out, err := c.Predict(context.Background(), patient.Vector{2: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, out)

	out, err = c.Predict(context.Background(), patient.Vector{2: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestLoad_JSON(t *testing.T) {
	c, err := Load(context.Background(), writeArtifact(t, "m.json", logisticJSON), Options{})
	require.NoError(t, err)

	out, err := c.Predict(context.Background(), patient.Vector{})
	require.NoError(t, err)
	assert.Equal(t, 0, out)
}

func TestLoad_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "{{{"},
		{"unknown kind", "kind: magic\nfeatures: [age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal]\n"},
		{"unknown field", logisticYAML + "extra: 1\n"},
		{"reordered features", "kind: logistic\nfeatures: [sex, age, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal]\ncoefficients: [0,0,0,0,0,0,0,0,0,0,0,0,0]\n"},
		{"missing feature", "kind: logistic\nfeatures: [age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca]\ncoefficients: [0,0,0,0,0,0,0,0,0,0,0,0]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeArtifact(t, "m.yaml", tt.content), Options{})
			assert.ErrorIs(t, err, ErrModelUnavailable)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), Options{})
	assert.ErrorIs(t, err, ErrModelUnavailable)

	_, err = Load(context.Background(), "", Options{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestNew_Logistic_CoefficientCount(t *testing.T) {
	_, err := New(context.Background(), logisticArtifact([]float64{1, 2}), Options{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestNew_Logistic_Threshold(t *testing.T) {
	a := logisticArtifact(make([]float64, patient.FeatureCount))
	bad := 1.5
	a.Threshold = &bad
	_, err := New(context.Background(), a, Options{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestNew_Nil(t *testing.T) {
	_, err := New(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLogistic_DefaultThreshold(t *testing.T) {
	// z = 0 gives exactly 0.5 which is a positive
	c, err := New(context.Background(), logisticArtifact(make([]float64, patient.FeatureCount)), Options{})
	require.NoError(t, err)
	out, err := c.Predict(context.Background(), patient.Vector{})
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestPredict_NonFinite(t *testing.T) {
	c, err := New(context.Background(), logisticArtifact(make([]float64, patient.FeatureCount)), Options{})
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), patient.Vector{9: math.NaN()})
	assert.ErrorIs(t, err, ErrInference)

	_, err = c.Predict(context.Background(), patient.Vector{0: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInference)
}

func TestFeatures_Copy(t *testing.T) {
	f := Features()
	require.Len(t, f, patient.FeatureCount)
	f[0] = "changed"
	assert.Equal(t, "age", patient.FeatureNames[0])
}
