package mojang

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

var testSession = data.Session{AccessToken: testToken, ClientToken: "client", ProfileID: cydhraID, Alias: "Cydhra"}

const challengesBody = `[
	{"answer":{"id":123},"question":{"id":1,"question":"What is your favorite pet's name?"}},
	{"answer":{"id":456},"question":{"id":2,"question":"What is your favorite movie?"}},
	{"answer":{"id":789},"question":{"id":3,"question":"What is your favorite author's last name?"}}
]`

func TestClient_IsIPSecure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr error
	}{
		{name: "secured", status: http.StatusNoContent, want: true},
		{name: "secured with ok", status: http.StatusOK, body: "[]", want: true},
		{name: "not secured", status: http.StatusForbidden, body: bodyNotSecured, want: false},
		{name: "invalid token propagates", status: http.StatusForbidden, body: `{"error":"ForbiddenOperationException","errorMessage":"Invalid token."}`, wantErr: apierr.ErrInvalidAccessToken},
		{name: "unauthorized propagates", status: http.StatusUnauthorized, body: `{"error":"Unauthorized","errorMessage":"The request requires user authentication"}`, wantErr: apierr.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/user/security/location", r.URL.Path)
				assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
				respond(w, tt.status, tt.body)
			})

			got, err := c.IsIPSecure(context.Background(), testSession)
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

func TestClient_IsIPSecureNoToken(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.IsIPSecure(context.Background(), data.Session{})
	assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
	assert.Zero(t, calls.Load())
}

func TestClient_GetSecurityChallenges(t *testing.T) {
	t.Run("three challenges", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user/security/challenges", r.URL.Path)
			assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
			respond(w, http.StatusOK, challengesBody)
		})

		challenges, err := c.GetSecurityChallenges(context.Background(), testSession)
		require.NoError(t, err)
		assert.Equal(t, 123, challenges[0].Answer.ID)
		assert.Equal(t, "What is your favorite movie?", challenges[1].Question.Question)
		assert.Equal(t, 3, challenges[2].Question.ID)
	})

	t.Run("wrong count is malformed", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusOK, `[]`)
		})

		_, err := c.GetSecurityChallenges(context.Background(), testSession)
		assert.ErrorIs(t, err, apierr.ErrMalformedResponse)
	})
}

func TestClient_SubmitSecurityChallengeAnswers(t *testing.T) {
	answers := []data.SecurityChallengeSolve{
		{ID: 123, Answer: "Rex"},
		{ID: 456, Answer: "Heat"},
		{ID: 789, Answer: "Pratchett"},
	}

	tests := []struct {
		name      string
		answers   []data.SecurityChallengeSolve
		status    int
		body      string
		wantErr   error
		wantDesc  string
		wantCalls int32
	}{
		{
			name:      "accepted",
			answers:   answers,
			status:    http.StatusNoContent,
			wantCalls: 1,
		},
		{
			name:      "wrong answer",
			answers:   answers,
			status:    http.StatusForbidden,
			body:      `{"error":"ForbiddenOperationException","errorMessage":"At least one answer was incorrect"}`,
			wantErr:   apierr.ErrInvalidArgument,
			wantDesc:  "At least one answer was incorrect",
			wantCalls: 1,
		},
		{
			name:      "two answers",
			answers:   answers[:2],
			wantErr:   apierr.ErrInvalidArgument,
			wantCalls: 0,
		},
		{
			name:      "four answers",
			answers:   append(append([]data.SecurityChallengeSolve{}, answers...), data.SecurityChallengeSolve{ID: 1}),
			wantErr:   apierr.ErrInvalidArgument,
			wantCalls: 0,
		},
		{
			name:      "duplicate ids",
			answers:   []data.SecurityChallengeSolve{{ID: 1}, {ID: 1}, {ID: 2}},
			wantErr:   apierr.ErrInvalidArgument,
			wantCalls: 0,
		},
		{
			name:      "unparsable forbidden body is not a wrong answer",
			answers:   answers,
			status:    http.StatusForbidden,
			body:      "<html>Forbidden</html>",
			wantErr:   apierr.ErrMalformedResponse,
			wantCalls: 1,
		},
		{
			name:      "server error",
			answers:   answers,
			status:    http.StatusInternalServerError,
			body:      "oops",
			wantErr:   apierr.ErrUnexpectedServer,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/user/security/location", r.URL.Path)
				assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

				var sent []data.SecurityChallengeSolve
				if assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent)) {
					assert.Equal(t, tt.answers, sent)
				}
				respond(w, tt.status, tt.body)
			})

			err := c.SubmitSecurityChallengeAnswers(context.Background(), testSession, tt.answers)
			assert.Equal(t, tt.wantCalls, calls.Load())

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantDesc != "" {
				var apiErr *apierr.Error
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantDesc, apiErr.Description)
			}
		})
	}
}
