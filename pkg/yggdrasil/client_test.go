package yggdrasil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/classify"
	"github.com/steviee/nidhogg/pkg/data"
)

const (
	testClientToken = "b2c1d0e4-2f1a-4a47-9c3e-1a2b3c4d5e6f"

	bodyInvalidToken  = `{"error":"ForbiddenOperationException","errorMessage":"Invalid token."}`
	bodyInvalidCreds  = `{"error":"ForbiddenOperationException","errorMessage":"Invalid credentials. Invalid username or password."}`
	bodyRefused       = `{"error":"ForbiddenOperationException","errorMessage":"Invalid credentials."}`
	bodyUserMigrated  = `{"error":"ForbiddenOperationException","errorMessage":"Invalid credentials. Account migrated, use email as username.","cause":"UserMigratedException"}`
	bodyAuthenticated = `{
  "accessToken": "access-1",
  "clientToken": "b2c1d0e4-2f1a-4a47-9c3e-1a2b3c4d5e6f",
  "availableProfiles": [{"id": "fdba166c4eab43eab0e88d7d62e1c417", "name": "Cydhra"}],
  "selectedProfile": {"id": "fdba166c4eab43eab0e88d7d62e1c417", "name": "Cydhra"},
  "user": {"id": "9a0e5a7b", "username": "cydhra@example.com"}
}`
)

// route is a canned response for one path.
type route struct {
	status int
	body   string
	check  func(t *testing.T, r *http.Request, body map[string]any)
}

func newTestServer(t *testing.T, routes map[string]route) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt, ok := routes[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "nidhogg/"))

		if rt.check != nil {
			var body map[string]any
			if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
				rt.check(t, r, body)
			}
		}

		w.WriteHeader(rt.status)
		_, _ = w.Write([]byte(rt.body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&Config{
		BaseURL:     server.URL,
		ClientToken: testClientToken,
		HTTPClient:  server.Client(),
	})
}

func TestNewClient(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		c := NewClient(nil)
		assert.Equal(t, DefaultBaseURL, c.baseURL)
		assert.NotEmpty(t, c.ClientToken())
		assert.NotNil(t, c.transport)
		assert.Same(t, classify.Default, c.classifier)
	})

	t.Run("custom config", func(t *testing.T) {
		c := NewClient(&Config{
			BaseURL:     "https://auth.example.com",
			Timeout:     5 * time.Second,
			ClientToken: "fixed",
		})
		assert.Equal(t, "https://auth.example.com", c.baseURL)
		assert.Equal(t, "fixed", c.ClientToken())
	})

	t.Run("random client tokens differ", func(t *testing.T) {
		assert.NotEqual(t, NewClient(nil).ClientToken(), NewClient(nil).ClientToken())
	})
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name     string
		creds    data.AccountCredentials
		opts     *LoginOptions
		status   int
		body     string
		wantErr  error
		noServer bool
	}{
		{
			name:   "success",
			creds:  data.AccountCredentials{Username: "cydhra@example.com", Password: "secret"},
			opts:   &LoginOptions{Agent: &data.MinecraftAgent, RequestUser: true},
			status: http.StatusOK,
			body:   bodyAuthenticated,
		},
		{
			name:    "invalid credentials",
			creds:   data.AccountCredentials{Username: "a", Password: "b"},
			status:  http.StatusForbidden,
			body:    bodyInvalidCreds,
			wantErr: apierr.ErrInvalidCredentials,
		},
		{
			name:    "authentication refused",
			creds:   data.AccountCredentials{Username: "a", Password: "b"},
			status:  http.StatusForbidden,
			body:    bodyRefused,
			wantErr: apierr.ErrAuthenticationRefused,
		},
		{
			name:    "user migrated",
			creds:   data.AccountCredentials{Username: "Cydhra", Password: "b"},
			status:  http.StatusForbidden,
			body:    bodyUserMigrated,
			wantErr: apierr.ErrUserMigrated,
		},
		{
			name:    "missing access token",
			creds:   data.AccountCredentials{Username: "a", Password: "b"},
			status:  http.StatusOK,
			body:    `{"clientToken":"x"}`,
			wantErr: apierr.ErrMalformedResponse,
		},
		{
			name:     "empty password",
			creds:    data.AccountCredentials{Username: "a"},
			wantErr:  apierr.ErrInvalidArgument,
			noServer: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			server := newTestServer(t, map[string]route{
				"/authenticate": {
					status: tt.status,
					body:   tt.body,
					check: func(t *testing.T, r *http.Request, body map[string]any) {
						called = true
						assert.Equal(t, tt.creds.Username, body["username"])
						assert.Equal(t, tt.creds.Password, body["password"])
						assert.Equal(t, testClientToken, body["clientToken"])
						if tt.opts != nil && tt.opts.Agent != nil {
							assert.Equal(t, map[string]any{"name": "Minecraft", "version": float64(1)}, body["agent"])
							assert.Equal(t, true, body["requestUser"])
						} else {
							assert.NotContains(t, body, "agent")
						}
					},
				},
			})

			result, err := newTestClient(server).Login(context.Background(), tt.creds, tt.opts)
			assert.Equal(t, !tt.noServer, called)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-1", result.Session.AccessToken)
			assert.Equal(t, testClientToken, result.Session.ClientToken)
			assert.Equal(t, "fdba166c4eab43eab0e88d7d62e1c417", result.Session.ProfileID)
			assert.Equal(t, "Cydhra", result.Session.Alias)
			require.Len(t, result.AvailableProfiles, 1)
			require.NotNil(t, result.User)
			assert.Equal(t, "cydhra@example.com", result.User.Username)
		})
	}
}

func TestClient_LoginErrorCarriesDescription(t *testing.T) {
	server := newTestServer(t, map[string]route{
		"/authenticate": {status: http.StatusForbidden, body: bodyInvalidCreds},
	})

	_, err := newTestClient(server).Login(context.Background(), data.AccountCredentials{Username: "a", Password: "b"}, nil)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials. Invalid username or password.", apiErr.Description)
}

func TestClient_Validate(t *testing.T) {
	session := data.Session{AccessToken: "access-1", ClientToken: testClientToken}

	tests := []struct {
		name               string
		status             int
		body               string
		includeClientToken bool
		want               bool
		wantErr            error
	}{
		{name: "valid", status: http.StatusNoContent, includeClientToken: true, want: true},
		{name: "valid without client token", status: http.StatusNoContent, want: true},
		{name: "invalid token", status: http.StatusForbidden, body: bodyInvalidToken, includeClientToken: true},
		{name: "invalid credentials", status: http.StatusForbidden, body: bodyInvalidCreds},
		{name: "authentication refused", status: http.StatusForbidden, body: bodyRefused},
		{name: "user migrated", status: http.StatusForbidden, body: bodyUserMigrated},
		{name: "unknown forbidden", status: http.StatusForbidden, body: `{"error":"ForbiddenOperationException","errorMessage":"nope"}`},
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "server error", status: http.StatusInternalServerError, body: "oops"},
		{name: "malformed forbidden", status: http.StatusForbidden, body: "<html>", wantErr: apierr.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, map[string]route{
				"/validate": {
					status: tt.status,
					body:   tt.body,
					check: func(t *testing.T, r *http.Request, body map[string]any) {
						assert.Equal(t, "access-1", body["accessToken"])
						if tt.includeClientToken {
							assert.Equal(t, testClientToken, body["clientToken"])
						} else {
							assert.NotContains(t, body, "clientToken")
						}
					},
				},
			})

			got, err := newTestClient(server).Validate(context.Background(), session, tt.includeClientToken)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ValidateEmptyToken(t *testing.T) {
	c := NewClient(&Config{BaseURL: "http://127.0.0.1:0"})

	ok, err := c.Validate(context.Background(), data.Session{}, true)
	assert.False(t, ok)
	assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
}

func TestClient_ValidateTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	ok, err := NewClient(&Config{BaseURL: url}).Validate(context.Background(), data.Session{AccessToken: "a"}, true)
	assert.False(t, ok)
	require.Error(t, err)
	assert.False(t, apierr.IsClassified(err))
}

func TestClient_Refresh(t *testing.T) {
	old := data.Session{AccessToken: "access-1", ClientToken: testClientToken, ProfileID: "p1", Alias: "Cydhra"}

	t.Run("success shares client token", func(t *testing.T) {
		server := newTestServer(t, map[string]route{
			"/refresh": {
				status: http.StatusOK,
				body:   `{"accessToken":"access-2","clientToken":"` + testClientToken + `"}`,
				check: func(t *testing.T, r *http.Request, body map[string]any) {
					assert.Equal(t, "access-1", body["accessToken"])
					assert.Equal(t, testClientToken, body["clientToken"])
					assert.NotContains(t, body, "selectedProfile")
				},
			},
		})

		result, err := newTestClient(server).Refresh(context.Background(), old, nil)
		require.NoError(t, err)
		assert.Equal(t, "access-2", result.Session.AccessToken)
		assert.Equal(t, old.ClientToken, result.Session.ClientToken)
		assert.Equal(t, "p1", result.Session.ProfileID)
		assert.Empty(t, result.AvailableProfiles)
	})

	t.Run("selected profile and user", func(t *testing.T) {
		server := newTestServer(t, map[string]route{
			"/refresh": {
				status: http.StatusOK,
				body:   `{"accessToken":"access-2","clientToken":"` + testClientToken + `","selectedProfile":{"id":"p2","name":"Other"},"user":{"id":"u","username":"x"}}`,
				check: func(t *testing.T, r *http.Request, body map[string]any) {
					assert.Equal(t, map[string]any{"id": "p2", "name": "Other"}, body["selectedProfile"])
					assert.Equal(t, true, body["requestUser"])
				},
			},
		})

		result, err := newTestClient(server).Refresh(context.Background(), old, &RefreshOptions{
			SelectedProfile: &data.GameProfile{ID: "p2", Name: "Other"},
			RequestUser:     true,
		})
		require.NoError(t, err)
		assert.Equal(t, "p2", result.Session.ProfileID)
		assert.Equal(t, "Other", result.Session.Alias)
		require.NotNil(t, result.User)
	})

	t.Run("invalidated token", func(t *testing.T) {
		server := newTestServer(t, map[string]route{
			"/refresh": {status: http.StatusForbidden, body: bodyInvalidToken},
		})

		_, err := newTestClient(server).Refresh(context.Background(), old, nil)
		assert.ErrorIs(t, err, apierr.ErrInvalidAccessToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := NewClient(nil).Refresh(context.Background(), data.Session{}, nil)
		assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
	})
}

func TestClient_Invalidate(t *testing.T) {
	session := data.Session{AccessToken: "access-1", ClientToken: testClientToken}

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "success", status: http.StatusNoContent},
		{name: "already invalid", status: http.StatusForbidden, body: bodyInvalidToken},
		{name: "forbidden unexpected", status: http.StatusForbidden, body: `{"error":"Other","errorMessage":"x"}`},
		{name: "server error propagates", status: http.StatusBadGateway, body: "bad gateway", wantErr: apierr.ErrUnexpectedServer},
		{name: "unparsable forbidden body propagates", status: http.StatusForbidden, body: "<html>Forbidden</html>", wantErr: apierr.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, map[string]route{
				"/invalidate": {
					status: tt.status,
					body:   tt.body,
					check: func(t *testing.T, r *http.Request, body map[string]any) {
						assert.Equal(t, "access-1", body["accessToken"])
						assert.Equal(t, testClientToken, body["clientToken"])
					},
				},
			})

			err := newTestClient(server).Invalidate(context.Background(), session)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClient_SignOut(t *testing.T) {
	creds := data.AccountCredentials{Username: "cydhra@example.com", Password: "secret"}

	t.Run("success", func(t *testing.T) {
		server := newTestServer(t, map[string]route{
			"/signout": {
				status: http.StatusNoContent,
				check: func(t *testing.T, r *http.Request, body map[string]any) {
					assert.Equal(t, map[string]any{"username": creds.Username, "password": creds.Password}, body)
				},
			},
		})
		assert.NoError(t, newTestClient(server).SignOut(context.Background(), creds))
	})

	t.Run("wrong password", func(t *testing.T) {
		server := newTestServer(t, map[string]route{
			"/signout": {status: http.StatusForbidden, body: bodyInvalidCreds},
		})
		assert.ErrorIs(t, newTestClient(server).SignOut(context.Background(), creds), apierr.ErrInvalidCredentials)
	})

	t.Run("missing username", func(t *testing.T) {
		err := NewClient(nil).SignOut(context.Background(), data.AccountCredentials{Password: "x"})
		assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
	})
}

func TestClient_CustomClassifier(t *testing.T) {
	server := newTestServer(t, map[string]route{
		"/authenticate": {status: http.StatusForbidden, body: `{"error":"ForbiddenOperationException","errorMessage":"Account locked"}`},
	})

	locked := errors.New("locked")
	c := NewClient(&Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Classifier: classify.New(classify.WithExtraForbiddenRules(classify.Rule{
			Name:  "locked",
			Match: classify.DescriptionContains("locked"),
			Kind:  locked,
		})),
	})

	_, err := c.Login(context.Background(), data.AccountCredentials{Username: "a", Password: "b"}, nil)
	assert.ErrorIs(t, err, locked)
}

func TestAuthRequestResponse_OptionalFieldsAbsent(t *testing.T) {
	req := AuthRequest{Username: "a", Password: "b"}
	encoded, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"a","password":"b"}`, string(encoded))

	var decodedReq AuthRequest
	require.NoError(t, json.Unmarshal(encoded, &decodedReq))
	assert.Equal(t, req, decodedReq)

	resp := AuthResponse{AccessToken: "x", ClientToken: "y"}
	encoded, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accessToken":"x","clientToken":"y"}`, string(encoded))

	var decodedResp AuthResponse
	require.NoError(t, json.Unmarshal(encoded, &decodedResp))
	assert.Equal(t, resp, decodedResp)
	assert.Nil(t, decodedResp.SelectedProfile)
	assert.Nil(t, decodedResp.User)
	assert.Nil(t, decodedResp.AvailableProfiles)
}
