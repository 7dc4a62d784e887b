package mojang

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/classify"
)

const (
	cydhraID       = "fdba166c4eab43eab0e88d7d62e1c417"
	cydhraUUID     = "fdba166c-4eab-43ea-b0e8-8d7d62e1c417"
	testToken      = "access-token"
	bodyNotSecured = `{"error":"ForbiddenOperationException","errorMessage":"Current IP is not secured"}`
)

// newTestClient starts a server running handler and returns a client whose
// API and session base URLs both point at it, plus a request counter.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c := NewClient(&Config{
		APIBaseURL:     server.URL,
		SessionBaseURL: server.URL,
		HTTPClient:     server.Client(),
	})
	return c, &calls
}

func respond(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		config          *Config
		wantAPI         string
		wantSession     string
		wantConcurrency int
	}{
		{
			name:            "nil config uses defaults",
			config:          nil,
			wantAPI:         DefaultAPIBaseURL,
			wantSession:     DefaultSessionBaseURL,
			wantConcurrency: DefaultBatchConcurrency,
		},
		{
			name: "custom config",
			config: &Config{
				APIBaseURL:       "https://api.example.com",
				SessionBaseURL:   "https://session.example.com",
				Timeout:          5 * time.Second,
				UserAgent:        "custom-agent",
				BatchConcurrency: 2,
			},
			wantAPI:         "https://api.example.com",
			wantSession:     "https://session.example.com",
			wantConcurrency: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClient(tt.config)

			assert.Equal(t, tt.wantAPI, got.apiBaseURL)
			assert.Equal(t, tt.wantSession, got.sessionBaseURL)
			assert.Equal(t, tt.wantConcurrency, got.batchConcurrency)
			assert.NotNil(t, got.transport)
			assert.NotNil(t, got.classifier)
		})
	}
}

func TestNewClient_DefaultClassifierKnowsIPNotSecured(t *testing.T) {
	c := NewClient(nil)

	_, err := c.classifier.Classify(http.StatusForbidden, []byte(bodyNotSecured), nil)
	assert.ErrorIs(t, err, apierr.ErrIPNotSecured)

	custom := classify.New()
	c = NewClient(&Config{Classifier: custom})
	assert.Same(t, custom, c.classifier)
}

func TestClient_Close(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.NotPanics(t, c.Close)
}
