// Package mojang is a client for the Mojang account and session APIs.
package mojang

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/steviee/nidhogg/internal/transport"
	"github.com/steviee/nidhogg/internal/version"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/classify"
)

const (
	// DefaultAPIBaseURL is the default Mojang API base URL.
	DefaultAPIBaseURL = "https://api.mojang.com"

	// DefaultSessionBaseURL is the default session server base URL.
	DefaultSessionBaseURL = "https://sessionserver.mojang.com"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultBatchConcurrency is the default number of concurrent requests
	// of a batch lookup.
	DefaultBatchConcurrency = 8
)

const (
	endpointUUIDByName     transport.Endpoint = "/users/profiles/minecraft/{name}"
	endpointNameHistory    transport.Endpoint = "/user/profiles/{uuid}/names"
	endpointUUIDsByNames   transport.Endpoint = "/profiles/minecraft"
	endpointProfile        transport.Endpoint = "/session/minecraft/profile/{uuid}"
	endpointLocation       transport.Endpoint = "/user/security/location"
	endpointChallenges     transport.Endpoint = "/user/security/challenges"
	endpointSkin           transport.Endpoint = "/user/profile/{uuid}/skin"
	endpointBlockedServers transport.Endpoint = "/blockedservers"
	endpointStatistics     transport.Endpoint = "/orders/statistics"
)

// IPNotSecuredRule classifies the 403 the API sends when the current IP has
// not been secured with the security challenges.
var IPNotSecuredRule = classify.Rule{
	Name:  "ip_not_secured",
	Match: classify.DescriptionContains("Current IP is not secured"),
	Kind:  apierr.ErrIPNotSecured,
}

// Client is a Mojang API client. It is safe for concurrent use.
type Client struct {
	apiBaseURL       string
	sessionBaseURL   string
	transport        *transport.Client
	classifier       *classify.Classifier
	batchConcurrency int
}

// Config holds client configuration.
type Config struct {
	APIBaseURL     string
	SessionBaseURL string
	Timeout        time.Duration
	UserAgent      string

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient transport.Doer

	// Classifier overrides the response classifier. The default adds
	// IPNotSecuredRule to the default rules.
	Classifier *classify.Classifier

	// BatchConcurrency limits concurrent requests of GetProfiles.
	BatchConcurrency int
}

// NewClient creates a new Mojang API client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}

	if config.SessionBaseURL == "" {
		config.SessionBaseURL = DefaultSessionBaseURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = version.UserAgent()
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	if config.Classifier == nil {
		config.Classifier = classify.New(classify.WithExtraForbiddenRules(IPNotSecuredRule))
	}

	if config.BatchConcurrency <= 0 {
		config.BatchConcurrency = DefaultBatchConcurrency
	}

	slog.Debug("creating Mojang API client",
		"api_base_url", config.APIBaseURL,
		"session_base_url", config.SessionBaseURL,
		"timeout", config.Timeout,
		"batch_concurrency", config.BatchConcurrency)

	return &Client{
		apiBaseURL:       config.APIBaseURL,
		sessionBaseURL:   config.SessionBaseURL,
		transport:        transport.New(config.HTTPClient, config.UserAgent),
		classifier:       config.Classifier,
		batchConcurrency: config.BatchConcurrency,
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.transport.Close()
}

// call executes req and classifies the response into v.
func (c *Client) call(ctx context.Context, req transport.Request, v any) (classify.Outcome, error) {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	return c.classifier.Classify(resp.StatusCode, resp.Body, v)
}

// callJSON sends body as JSON and classifies the response into v.
func (c *Client) callJSON(ctx context.Context, req transport.Request, body any, v any) (classify.Outcome, error) {
	reader, err := transport.JSONBody(body)
	if err != nil {
		return 0, err
	}
	req.Body = reader
	return c.call(ctx, req, v)
}
