// Package classify turns an HTTP status code and response body into either
// a decoded value or exactly one apierr error.
package classify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/steviee/nidhogg/pkg/apierr"
)

// Outcome describes the result of a classification.
type Outcome int

const (
	// Failed is returned alongside every error.
	Failed Outcome = iota

	// Decoded means the body was decoded into the supplied value.
	Decoded

	// Success means a 2xx response whose body was not requested.
	Success

	// NoContent means a 204 response. Callers decide what it means.
	NoContent
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Decoded:
		return "decoded"
	case Success:
		return "success"
	case NoContent:
		return "no_content"
	default:
		return "unknown"
	}
}

// Classifier interprets API responses. It is immutable after construction
// and safe for concurrent use.
type Classifier struct {
	forbiddenRules []Rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithForbiddenRules replaces the default 403 rules.
func WithForbiddenRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.forbiddenRules = append([]Rule(nil), rules...)
	}
}

// WithExtraForbiddenRules appends rules evaluated after the current ones.
func WithExtraForbiddenRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.forbiddenRules = append(c.forbiddenRules, rules...)
	}
}

// New creates a Classifier using DefaultForbiddenRules unless overridden.
func New(opts ...Option) *Classifier {
	c := &Classifier{forbiddenRules: DefaultForbiddenRules()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default is a Classifier with the default rules.
var Default = New()

// Rules returns a copy of the 403 rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.forbiddenRules...)
}

// Classify inspects a response. On a 2xx status other than 204 with a
// non-nil v the body is JSON-decoded into v.
func (c *Classifier) Classify(statusCode int, body []byte, v any) (Outcome, error) {
	switch {
	case statusCode == http.StatusNoContent:
		return NoContent, nil

	case statusCode >= 200 && statusCode < 300:
		if v == nil {
			return Success, nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			return Failed, apierr.Malformed(statusCode, err)
		}
		return Decoded, nil

	case statusCode == http.StatusBadRequest:
		return Failed, apierr.New(apierr.ErrBadRequest, statusCode, describe(body))

	case statusCode == http.StatusForbidden:
		return Failed, c.classifyForbidden(body)

	case statusCode == http.StatusTooManyRequests:
		slog.Warn("api rate limit exceeded")
		return Failed, apierr.New(apierr.ErrRateLimited, statusCode, describe(body))

	case statusCode == http.StatusUnauthorized:
		return Failed, apierr.New(apierr.ErrUnauthorized, statusCode, describe(body))

	default:
		err := apierr.Unexpected(statusCode, string(body))
		if errBody, ok := parseErrorBody(body); ok {
			err.Type = errBody.Error
			err.Description = errBody.Description
			err.Cause = errBody.Cause
		}
		return Failed, err
	}
}

func (c *Classifier) classifyForbidden(body []byte) error {
	var errBody apierr.ServerErrorBody
	if err := json.Unmarshal(body, &errBody); err != nil {
		return apierr.Malformed(http.StatusForbidden, err)
	}

	if errBody.Error != apierr.ForbiddenOperation {
		return apierr.New(apierr.ErrUnexpectedServer, http.StatusForbidden, errBody)
	}

	for _, rule := range c.forbiddenRules {
		if rule.Match != nil && rule.Match(errBody) {
			slog.Debug("forbidden response classified",
				"rule", rule.Name,
				"description", errBody.Description)
			return apierr.New(rule.Kind, http.StatusForbidden, errBody)
		}
	}

	return apierr.New(apierr.ErrUnexpectedServer, http.StatusForbidden, errBody)
}

func parseErrorBody(body []byte) (apierr.ServerErrorBody, bool) {
	var errBody apierr.ServerErrorBody
	if len(body) == 0 {
		return errBody, false
	}
	if err := json.Unmarshal(body, &errBody); err != nil {
		return errBody, false
	}
	return errBody, true
}

// describe returns the parsed error body, or one whose description is the
// raw text when the body is not an error body.
func describe(body []byte) apierr.ServerErrorBody {
	if errBody, ok := parseErrorBody(body); ok {
		return errBody
	}
	return apierr.ServerErrorBody{Description: strings.TrimSpace(string(body))}
}
