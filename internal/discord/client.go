// Package discord wraps the Discord OAuth and webhook APIs.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cjjwisniewski/seeker-functions/pkg/httpclient"
)

// DefaultAPIBaseURL is the production Discord API endpoint.
const DefaultAPIBaseURL = "https://discord.com/api/v10"

// Config holds the OAuth application settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	GuildID      string
	RoleID       string
	// BaseURL overrides the Discord API endpoint in tests.
	BaseURL string
}

// Client talks to the Discord API. Calls run through a circuit breaker so a
// Discord outage degrades login and digests without hammering the API.
type Client struct {
	cfg    Config
	http   *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewClient creates a Discord client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIBaseURL
	}
	base := httpclient.New(httpclient.DefaultConfig())
	return &Client{
		cfg:    cfg,
		http:   httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("discord"), logger),
		logger: logger,
	}
}

// AuthorizeURL builds the login redirect target for the given state token.
func (c *Client) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("redirect_uri", c.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "identify guilds.members.read")
	params.Set("state", state)
	return c.cfg.BaseURL + "/oauth2/authorize?" + params.Encode()
}

// TokenResponse is the OAuth code-exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)

	resp, err := c.http.Post(ctx, c.cfg.BaseURL+"/oauth2/token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "discord")
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &token, nil
}

// User is the authenticated Discord account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FetchUser retrieves the account behind an access token.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.get(ctx, c.cfg.BaseURL+"/users/@me", accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch discord user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "discord")
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &user, nil
}

// CheckMembership verifies the user belongs to the configured guild and holds
// the configured role. An empty RoleID requires guild membership only.
func (c *Client) CheckMembership(ctx context.Context, accessToken string) (bool, error) {
	resp, err := c.get(ctx, c.cfg.BaseURL+"/users/@me/guilds/"+c.cfg.GuildID+"/member", accessToken)
	if err != nil {
		return false, fmt.Errorf("fetch guild membership: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, httpclient.ParseResponseError(resp, "discord")
	}

	var member struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return false, fmt.Errorf("decode member response: %w", err)
	}

	if c.cfg.RoleID == "" {
		return true, nil
	}
	for _, role := range member.Roles {
		if role == c.cfg.RoleID {
			return true, nil
		}
	}
	return false, nil
}

// RevokeToken invalidates an access token on logout. Best effort; failures
// are logged by the caller and never block the logout.
func (c *Client) RevokeToken(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("token", accessToken)

	resp, err := c.http.Post(ctx, c.cfg.BaseURL+"/oauth2/token/revoke",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "discord")
	}
	return nil
}

func (c *Client) get(ctx context.Context, reqURL, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return c.http.Do(ctx, req)
}
