package predict

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mchmarny/cardiocheck/pkg/model"
	"github.com/mchmarny/cardiocheck/pkg/patient"
)

// Result is the outcome of one submission.
type Result struct {
	Verdict    Verdict   `json:"verdict" yaml:"verdict"`
	Label      string    `json:"label" yaml:"label"`
	Prediction int       `json:"prediction" yaml:"prediction"`
	Features   []float64 `json:"features" yaml:"features"`
	Message    string    `json:"message" yaml:"message"`
	Advice     string    `json:"advice" yaml:"advice"`
	Tips       []string  `json:"tips" yaml:"tips"`
}

// Predictor runs encode, predict and render against a loaded classifier.
// It holds no mutable state and is safe for concurrent use.
type Predictor struct {
	classifier model.Classifier
}

// New returns a predictor for c.
func New(c model.Classifier) (*Predictor, error) {
	if c == nil {
		return nil, errors.New("classifier required")
	}
	return &Predictor{classifier: c}, nil
}

// Model returns the name of the underlying classifier.
func (p *Predictor) Model() string {
	return p.classifier.Name()
}

// Predict encodes in, invokes the classifier and renders the verdict. Invalid
// input fails before the classifier is called.
func (p *Predictor) Predict(ctx context.Context, in *patient.Input) (*Result, error) {
	v, err := patient.Encode(in)
	if err != nil {
		return nil, err
	}

	out, err := p.classifier.Predict(ctx, v)
	if err != nil {
		if !errors.Is(err, model.ErrInference) {
			err = errors.Join(model.ErrInference, err)
		}
		return nil, err
	}

	verdict := Render(out)
	slog.Debug("prediction", "model", p.classifier.Name(), "verdict", verdict)

	return &Result{
		Verdict:    verdict,
		Label:      verdict.Label(),
		Prediction: out,
		Features:   v.Slice(),
		Message:    Message(in.Name, verdict),
		Advice:     Advice(verdict),
		Tips:       Tips(),
	}, nil
}
