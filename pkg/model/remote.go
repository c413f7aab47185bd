package model

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mchmarny/cardiocheck/pkg/net"
	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/pkg/errors"
)

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Prediction *int `json:"prediction"`
}

// remote delegates inference to an HTTP endpoint.
type remote struct {
	name     string
	endpoint string
	client   *http.Client
}

func newRemote(ctx context.Context, name, endpoint, token string) (*remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Wrapf(ErrModelUnavailable, "invalid remote endpoint: %q", endpoint)
	}

	return &remote{
		name:     name,
		endpoint: endpoint,
		client:   net.GetOAuthClient(ctx, token),
	}, nil
}

func (r *remote) Name() string {
	return r.name
}

func (r *remote) Predict(ctx context.Context, v patient.Vector) (int, error) {
	if err := checkFinite(v); err != nil {
		return 0, err
	}

	var resp remoteResponse
	if err := net.PostJSON(ctx, r.client, r.endpoint, remoteRequest{Features: v.Slice()}, &resp); err != nil {
		return 0, errors.Wrapf(ErrInference, "remote %s: %v", r.name, err)
	}
	if resp.Prediction == nil {
		return 0, errors.Wrapf(ErrInference, "remote %s: response missing prediction", r.name)
	}
	return *resp.Prediction, nil
}
