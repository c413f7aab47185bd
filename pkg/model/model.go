package model

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	KindLogistic = "logistic"
	KindTrees    = "trees"
	KindRemote   = "remote"

	defaultThreshold = 0.5
)

var (
	// ErrModelUnavailable is returned when the artifact cannot be loaded. Fatal at startup.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInference is returned when the classifier fails to evaluate a vector.
	ErrInference = errors.New("inference error")
)

// Classifier is a loaded binary classifier. Implementations are immutable
// after load and safe for concurrent use.
type Classifier interface {
	// Predict returns the class for the vector, 0 or 1.
	Predict(ctx context.Context, v patient.Vector) (int, error)
	// Name identifies the artifact.
	Name() string
}

// Artifact is the on-disk model description.
type Artifact struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     string   `json:"kind" yaml:"kind"`
	Features []string `json:"features" yaml:"features"`

	// logistic
	Intercept    float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	Threshold    *float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// trees
	Trees []Tree `json:"trees,omitempty" yaml:"trees,omitempty"`

	// remote
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// Options carry what a remote artifact needs beyond the file itself.
type Options struct {
	// Token is sent as a bearer token to remote endpoints.
	Token string
}

// Load reads the artifact at path and builds its classifier.
func Load(ctx context.Context, path string, opts Options) (Classifier, error) {
	if path == "" {
		return nil, errors.Wrap(ErrModelUnavailable, "model path not specified")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "reading %s: %v", path, err)
	}

	a, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	c, err := New(ctx, a, opts)
	if err != nil {
		return nil, err
	}

	slog.Debug("model loaded", "name", c.Name(), "kind", a.Kind, "path", path)
	return c, nil
}

// Decode parses artifact content. Extension ".json" selects JSON, anything else YAML.
func Decode(b []byte, ext string) (*Artifact, error) {
	var a Artifact
	if strings.EqualFold(ext, ".json") {
		d := json.NewDecoder(bytes.NewReader(b))
		d.DisallowUnknownFields()
		if err := d.Decode(&a); err != nil {
			return nil, errors.Wrapf(ErrModelUnavailable, "invalid JSON artifact: %v", err)
		}
		return &a, nil
	}

	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(&a); err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "invalid YAML artifact: %v", err)
	}
	return &a, nil
}

// New validates the artifact and builds its classifier.
func New(ctx context.Context, a *Artifact, opts Options) (Classifier, error) {
	if a == nil {
		return nil, errors.Wrap(ErrModelUnavailable, "artifact required")
	}
	if err := checkFeatures(a.Features); err != nil {
		return nil, err
	}

	name := a.Name
	if name == "" {
		name = a.Kind
	}

	switch a.Kind {
	case KindLogistic:
		return newLogistic(name, a)
	case KindTrees:
		return newForest(name, a.Trees)
	case KindRemote:
		return newRemote(ctx, name, a.Endpoint, opts.Token)
	default:
		return nil, errors.Wrapf(ErrModelUnavailable, "unknown model kind: %q", a.Kind)
	}
}

// checkFeatures ensures the artifact was trained on the same feature order the encoder produces.
func checkFeatures(features []string) error {
	if len(features) != patient.FeatureCount {
		return errors.Wrapf(ErrModelUnavailable, "artifact declares %d features, want %d",
			len(features), patient.FeatureCount)
	}
	for i, f := range features {
		if f != patient.FeatureNames[i] {
			return errors.Wrapf(ErrModelUnavailable, "feature %d is %q, want %q",
				i, f, patient.FeatureNames[i])
		}
	}
	return nil
}

func checkFinite(v patient.Vector) error {
	for i, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Wrapf(ErrInference, "feature %s is not finite", patient.FeatureNames[i])
		}
	}
	return nil
}

// Features returns the canonical feature list for building artifacts.
func Features() []string {
	return append([]string(nil), patient.FeatureNames[:]...)
}
