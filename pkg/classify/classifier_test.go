package classify

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/nidhogg/pkg/apierr"
)

func forbidden(description, cause string) []byte {
	body := `{"error":"ForbiddenOperationException","errorMessage":"` + description + `"`
	if cause != "" {
		body += `,"cause":"` + cause + `"`
	}
	return []byte(body + "}")
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        []byte
		wantKind    error
		wantDesc    string
		wantForbid  bool
		wantRawBody string
	}{
		{
			name:       "user migrated wins over credentials text",
			status:     http.StatusForbidden,
			body:       forbidden("Invalid credentials. Account migrated, use email as username.", "UserMigratedException"),
			wantKind:   apierr.ErrUserMigrated,
			wantDesc:   "Invalid credentials. Account migrated, use email as username.",
			wantForbid: true,
		},
		{
			name:       "username or password",
			status:     http.StatusForbidden,
			body:       forbidden("Invalid credentials. Invalid username or password.", ""),
			wantKind:   apierr.ErrInvalidCredentials,
			wantDesc:   "Invalid credentials. Invalid username or password.",
			wantForbid: true,
		},
		{
			name:       "invalid token",
			status:     http.StatusForbidden,
			body:       forbidden("Invalid token.", ""),
			wantKind:   apierr.ErrInvalidAccessToken,
			wantDesc:   "Invalid token.",
			wantForbid: true,
		},
		{
			name:       "bare invalid credentials is a lockout",
			status:     http.StatusForbidden,
			body:       forbidden("Invalid credentials.", ""),
			wantKind:   apierr.ErrAuthenticationRefused,
			wantDesc:   "Invalid credentials.",
			wantForbid: true,
		},
		{
			name:       "forbidden operation without matching rule",
			status:     http.StatusForbidden,
			body:       forbidden("Something else entirely.", ""),
			wantKind:   apierr.ErrUnexpectedServer,
			wantDesc:   "Something else entirely.",
			wantForbid: true,
		},
		{
			name:       "other exception type",
			status:     http.StatusForbidden,
			body:       []byte(`{"error":"IllegalArgumentException","errorMessage":"Invalid token."}`),
			wantKind:   apierr.ErrUnexpectedServer,
			wantDesc:   "Invalid token.",
			wantForbid: true,
		},
		{
			name:     "bad request with error body",
			status:   http.StatusBadRequest,
			body:     []byte(`{"error":"IllegalArgumentException","errorMessage":"credentials is null"}`),
			wantKind: apierr.ErrBadRequest,
			wantDesc: "credentials is null",
		},
		{
			name:     "bad request with plain text body",
			status:   http.StatusBadRequest,
			body:     []byte("Bad Request\n"),
			wantKind: apierr.ErrBadRequest,
			wantDesc: "Bad Request",
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     []byte(`{"error":"TooManyRequestsException","errorMessage":"The client has sent too many requests within a certain amount of time"}`),
			wantKind: apierr.ErrRateLimited,
			wantDesc: "The client has sent too many requests within a certain amount of time",
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     []byte(`{"error":"Unauthorized","errorMessage":"The request requires user authentication"}`),
			wantKind: apierr.ErrUnauthorized,
			wantDesc: "The request requires user authentication",
		},
		{
			name:        "server error keeps raw body",
			status:      http.StatusInternalServerError,
			body:        []byte("upstream exploded"),
			wantKind:    apierr.ErrUnexpectedServer,
			wantRawBody: "upstream exploded",
		},
		{
			name:        "not found with error body",
			status:      http.StatusNotFound,
			body:        []byte(`{"error":"Not Found","errorMessage":"The server has not found anything matching the request URI"}`),
			wantKind:    apierr.ErrUnexpectedServer,
			wantDesc:    "The server has not found anything matching the request URI",
			wantRawBody: `{"error":"Not Found","errorMessage":"The server has not found anything matching the request URI"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default.Classify(tt.status, tt.body, nil)
			require.Error(t, err)

			assert.ErrorIs(t, err, tt.wantKind)

			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDesc, apiErr.Description)
			if tt.wantRawBody != "" {
				assert.Equal(t, tt.wantRawBody, apiErr.Body)
			}

			if tt.wantForbid {
				assert.ErrorIs(t, err, apierr.ErrForbidden)
			} else {
				assert.NotErrorIs(t, err, apierr.ErrForbidden)
			}
		})
	}
}

func TestClassify_ForbiddenMalformed(t *testing.T) {
	outcome, err := Default.Classify(http.StatusForbidden, []byte("<html>Forbidden</html>"), nil)

	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, apierr.ErrMalformedResponse)
	assert.NotErrorIs(t, err, apierr.ErrForbidden)
	assert.False(t, apierr.IsClassified(err))
}

func TestClassify_ErrorsReturnFailed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		v      any
	}{
		{name: "undecodable 200", status: http.StatusOK, body: "not json", v: &map[string]any{}},
		{name: "bad request", status: http.StatusBadRequest, body: "nope"},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"ForbiddenOperationException","errorMessage":"Invalid token."}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: ""},
		{name: "rate limited", status: http.StatusTooManyRequests, body: ""},
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := Default.Classify(tt.status, []byte(tt.body), tt.v)

			require.Error(t, err)
			assert.Equal(t, Failed, outcome)
		})
	}
}

func TestClassify_Success(t *testing.T) {
	type payload struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	t.Run("decodes into value", func(t *testing.T) {
		var got payload
		outcome, err := Default.Classify(http.StatusOK, []byte(`{"id":"abc","name":"Cydhra"}`), &got)
		require.NoError(t, err)
		assert.Equal(t, Decoded, outcome)
		assert.Equal(t, payload{ID: "abc", Name: "Cydhra"}, got)
	})

	t.Run("nil value ignores body", func(t *testing.T) {
		outcome, err := Default.Classify(http.StatusOK, []byte("not json"), nil)
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
	})

	t.Run("no content ignores body and value", func(t *testing.T) {
		var got payload
		outcome, err := Default.Classify(http.StatusNoContent, []byte("garbage"), &got)
		require.NoError(t, err)
		assert.Equal(t, NoContent, outcome)
		assert.Equal(t, payload{}, got)
	})

	t.Run("malformed 2xx body", func(t *testing.T) {
		var got payload
		_, err := Default.Classify(http.StatusOK, []byte(`{"id":`), &got)
		require.Error(t, err)
		assert.ErrorIs(t, err, apierr.ErrMalformedResponse)
		assert.False(t, apierr.IsRetryable(err))
	})
}

func TestClassify_RateLimitedIsRetryable(t *testing.T) {
	_, err := Default.Classify(http.StatusTooManyRequests, nil, nil)
	require.Error(t, err)
	assert.True(t, apierr.IsRetryable(err))
}

func TestWithForbiddenRules(t *testing.T) {
	c := New(WithForbiddenRules(Rule{
		Name:  "locked",
		Match: DescriptionContains("locked"),
		Kind:  apierr.ErrAuthenticationRefused,
	}))

	_, err := c.Classify(http.StatusForbidden, forbidden("Account locked", ""), nil)
	assert.ErrorIs(t, err, apierr.ErrAuthenticationRefused)

	// defaults are gone
	_, err = c.Classify(http.StatusForbidden, forbidden("Invalid token.", ""), nil)
	assert.ErrorIs(t, err, apierr.ErrUnexpectedServer)
}

func TestWithExtraForbiddenRules(t *testing.T) {
	c := New(WithExtraForbiddenRules(Rule{
		Name:  "ip_not_secured",
		Match: DescriptionContains("Current IP is not secured"),
		Kind:  apierr.ErrIPNotSecured,
	}))

	require.Len(t, c.Rules(), len(DefaultForbiddenRules())+1)

	_, err := c.Classify(http.StatusForbidden, forbidden("Current IP is not secured", ""), nil)
	assert.ErrorIs(t, err, apierr.ErrIPNotSecured)

	// defaults still take precedence
	_, err = c.Classify(http.StatusForbidden, forbidden("Invalid token.", ""), nil)
	assert.ErrorIs(t, err, apierr.ErrInvalidAccessToken)
}

func TestDefaultForbiddenRules_Order(t *testing.T) {
	rules := DefaultForbiddenRules()

	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"user_migrated",
		"invalid_credentials",
		"invalid_access_token",
		"authentication_refused",
	}, names)

	// Both credential rules match the long message; the first one must win.
	body := apierr.ServerErrorBody{Description: "Invalid credentials. Invalid username or password."}
	assert.True(t, rules[1].Match(body))
	assert.True(t, rules[3].Match(body))
}

func TestRules_ReturnsCopy(t *testing.T) {
	c := New()
	rules := c.Rules()
	rules[0].Kind = errors.New("mutated")

	assert.Equal(t, apierr.ErrUserMigrated, c.Rules()[0].Kind)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "decoded", Decoded.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "no_content", NoContent.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
