package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// ClientCred obtains and caches OAuth2 client-credentials tokens for the
// fleet admin backend. Tokens are refreshed lazily when they expire.
type ClientCred struct {
	cc    func(context.Context) (*oauth2.Token, error)
	token *oauth2.Token
}

// NewClientCred builds a credentials client from the configuration.
func NewClientCred(conf Conf) *ClientCred {
	cfg := conf.toOauth2Config()
	return &ClientCred{cc: cfg.Token}
}

// GetToken returns a valid access token, requesting a new one from the
// authorization server when the cached token has expired.
func (c *ClientCred) GetToken() (string, error) {
	if c.token != nil && c.token.Valid() {
		return c.token.AccessToken, nil
	}
	tok, err := c.cc(context.Background())
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	c.token = tok
	return c.token.AccessToken, nil
}

// ForceRefresh discards the cached token and requests a fresh one.
func (c *ClientCred) ForceRefresh() (string, error) {
	tok, err := c.cc(context.Background())
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	c.token = tok
	return c.token.AccessToken, nil
}

// SetAuthHeader adds the bearer token to the request.
func (c *ClientCred) SetAuthHeader(req *http.Request) error {
	tok, err := c.GetToken()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}
