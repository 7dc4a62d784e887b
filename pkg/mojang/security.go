package mojang

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/steviee/nidhogg/internal/transport"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

// ChallengeCount is the number of security challenges of an account.
const ChallengeCount = 3

// IsIPSecure reports whether the current IP is trusted for the account of
// session.
func (c *Client) IsIPSecure(ctx context.Context, session data.Session) (bool, error) {
	if err := session.Validate(); err != nil {
		return false, err
	}

	_, err := c.call(ctx, transport.Request{
		Method:      http.MethodGet,
		BaseURL:     c.apiBaseURL,
		Path:        endpointLocation.Expand(),
		BearerToken: session.AccessToken,
	}, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apierr.ErrIPNotSecured):
		return false, nil
	default:
		return false, fmt.Errorf("check location: %w", err)
	}
}

// GetSecurityChallenges returns the security questions of the account.
func (c *Client) GetSecurityChallenges(ctx context.Context, session data.Session) ([ChallengeCount]data.SecurityChallenge, error) {
	var challenges [ChallengeCount]data.SecurityChallenge
	if err := session.Validate(); err != nil {
		return challenges, err
	}

	var list []data.SecurityChallenge
	_, err := c.call(ctx, transport.Request{
		Method:      http.MethodGet,
		BaseURL:     c.apiBaseURL,
		Path:        endpointChallenges.Expand(),
		BearerToken: session.AccessToken,
	}, &list)
	if err != nil {
		return challenges, fmt.Errorf("get challenges: %w", err)
	}

	if len(list) != ChallengeCount {
		return challenges, apierr.Malformed(http.StatusOK,
			fmt.Errorf("expected %d challenges, got %d", ChallengeCount, len(list)))
	}

	copy(challenges[:], list)
	return challenges, nil
}

// SubmitSecurityChallengeAnswers answers the security challenges to secure
// the current IP. Wrong answers are reported as apierr.ErrInvalidArgument.
func (c *Client) SubmitSecurityChallengeAnswers(ctx context.Context, session data.Session, answers []data.SecurityChallengeSolve) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if len(answers) != ChallengeCount {
		return apierr.InvalidArgument("exactly %d answers are required, got %d", ChallengeCount, len(answers))
	}
	ids := make(map[int]struct{}, len(answers))
	for _, answer := range answers {
		if _, ok := ids[answer.ID]; ok {
			return apierr.InvalidArgument("duplicate answer id %d", answer.ID)
		}
		ids[answer.ID] = struct{}{}
	}

	_, err := c.callJSON(ctx, transport.Request{
		Method:      http.MethodPost,
		BaseURL:     c.apiBaseURL,
		Path:        endpointLocation.Expand(),
		BearerToken: session.AccessToken,
	}, answers, nil)
	if errors.Is(err, apierr.ErrForbidden) {
		return fmt.Errorf("submit answers: %w", apierr.Reclassify(err, apierr.ErrInvalidArgument))
	}
	if err != nil {
		return fmt.Errorf("submit answers: %w", err)
	}
	return nil
}
