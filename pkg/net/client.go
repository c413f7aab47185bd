package net

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// GetOAuthClient returns a client that sends token as a bearer token.
// An empty token returns the plain client.
func GetOAuthClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return GetHTTPClient()
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: token,
		},
	)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, GetHTTPClient())
	return oauth2.NewClient(ctx, ts)
}
