// Package yggdrasil is a client for the Yggdrasil authentication server.
package yggdrasil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/steviee/nidhogg/internal/transport"
	"github.com/steviee/nidhogg/internal/version"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/classify"
	"github.com/steviee/nidhogg/pkg/data"
)

const (
	// DefaultBaseURL is the default authentication server URL.
	DefaultBaseURL = "https://authserver.mojang.com"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second
)

const (
	endpointAuthenticate transport.Endpoint = "/authenticate"
	endpointRefresh      transport.Endpoint = "/refresh"
	endpointValidate     transport.Endpoint = "/validate"
	endpointSignOut      transport.Endpoint = "/signout"
	endpointInvalidate   transport.Endpoint = "/invalidate"
)

// Client is a Yggdrasil API client. It is safe for concurrent use.
type Client struct {
	baseURL     string
	clientToken string
	transport   *transport.Client
	classifier  *classify.Classifier
}

// Config holds client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// ClientToken identifies this client to the server. Sessions can only
	// be refreshed with the client token they were issued for. A random
	// UUID is generated if empty.
	ClientToken string

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient transport.Doer

	// Classifier overrides the response classifier.
	Classifier *classify.Classifier
}

// NewClient creates a new Yggdrasil API client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = version.UserAgent()
	}

	if config.ClientToken == "" {
		config.ClientToken = uuid.NewString()
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	if config.Classifier == nil {
		config.Classifier = classify.Default
	}

	slog.Debug("creating Yggdrasil API client",
		"base_url", config.BaseURL,
		"timeout", config.Timeout)

	return &Client{
		baseURL:     config.BaseURL,
		clientToken: config.ClientToken,
		transport:   transport.New(config.HTTPClient, config.UserAgent),
		classifier:  config.Classifier,
	}
}

// ClientToken returns the client token sent with logins.
func (c *Client) ClientToken() string {
	return c.clientToken
}

// Close releases idle connections.
func (c *Client) Close() {
	c.transport.Close()
}

// post sends body as JSON and classifies the response into v.
func (c *Client) post(ctx context.Context, endpoint transport.Endpoint, body any, v any) (classify.Outcome, error) {
	reader, err := transport.JSONBody(body)
	if err != nil {
		return 0, err
	}

	resp, err := c.transport.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		BaseURL: c.baseURL,
		Path:    endpoint.Expand(),
		Body:    reader,
	})
	if err != nil {
		return 0, err
	}

	return c.classifier.Classify(resp.StatusCode, resp.Body, v)
}

// Login authenticates with username and password.
func (c *Client) Login(ctx context.Context, creds data.AccountCredentials, opts *LoginOptions) (*AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &LoginOptions{}
	}

	slog.Debug("yggdrasil login", "credentials", creds)

	var resp AuthResponse
	_, err := c.post(ctx, endpointAuthenticate, AuthRequest{
		Agent:       opts.Agent,
		Username:    creds.Username,
		Password:    creds.Password,
		ClientToken: c.clientToken,
		RequestUser: opts.RequestUser,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: %w", apierr.Malformed(http.StatusOK, errors.New("missing accessToken")))
	}

	return newAuthResult(resp.AccessToken, resp.ClientToken, resp.AvailableProfiles, resp.SelectedProfile, resp.User), nil
}

// Validate reports whether the access token of session is still usable.
// Any classified server error yields false. An error is returned only for
// an empty access token, transport failures and malformed responses.
func (c *Client) Validate(ctx context.Context, session data.Session, includeClientToken bool) (bool, error) {
	if err := session.Validate(); err != nil {
		return false, err
	}

	req := ValidationRequest{AccessToken: session.AccessToken}
	if includeClientToken {
		req.ClientToken = session.ClientToken
	}

	_, err := c.post(ctx, endpointValidate, req, nil)
	switch {
	case err == nil:
		return true, nil
	case apierr.IsClassified(err):
		slog.Debug("session is not valid", "session", session, "error", err)
		return false, nil
	default:
		return false, fmt.Errorf("validate: %w", err)
	}
}

// Refresh issues a new access token for session. The new session shares
// the client token of the old one, which becomes unusable.
func (c *Client) Refresh(ctx context.Context, session data.Session, opts *RefreshOptions) (*AuthResult, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &RefreshOptions{}
	}

	clientToken := session.ClientToken
	if clientToken == "" {
		clientToken = c.clientToken
	}

	var resp RefreshResponse
	_, err := c.post(ctx, endpointRefresh, RefreshRequest{
		AccessToken:     session.AccessToken,
		ClientToken:     clientToken,
		SelectedProfile: opts.SelectedProfile,
		RequestUser:     opts.RequestUser,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if resp.AccessToken == "" {
		return nil, fmt.Errorf("refresh: %w", apierr.Malformed(http.StatusOK, errors.New("missing accessToken")))
	}

	result := newAuthResult(resp.AccessToken, resp.ClientToken, nil, resp.SelectedProfile, resp.User)
	if result.Session.ClientToken == "" {
		result.Session.ClientToken = clientToken
	}
	if resp.SelectedProfile == nil {
		result.Session.ProfileID = session.ProfileID
		result.Session.Alias = session.Alias
	}
	return result, nil
}

// Invalidate invalidates session. Invalidating an already invalid session
// is not an error.
func (c *Client) Invalidate(ctx context.Context, session data.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	_, err := c.post(ctx, endpointInvalidate, InvalidateRequest{
		AccessToken: session.AccessToken,
		ClientToken: session.ClientToken,
	}, nil)
	if errors.Is(err, apierr.ErrForbidden) {
		slog.Debug("session already invalid", "session", session)
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	return nil
}

// SignOut invalidates every session of the account, regardless of client
// token.
func (c *Client) SignOut(ctx context.Context, creds data.AccountCredentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	_, err := c.post(ctx, endpointSignOut, SignOutRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
