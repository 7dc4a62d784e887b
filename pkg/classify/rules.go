package classify

import (
	"strings"

	"github.com/steviee/nidhogg/pkg/apierr"
)

// Rule maps a ForbiddenOperationException body to an error kind.
type Rule struct {
	// Name identifies the rule in logs and configuration.
	Name string

	// Match reports whether the rule applies to body.
	Match func(body apierr.ServerErrorBody) bool

	// Kind is the apierr sentinel produced when Match succeeds.
	Kind error
}

// CauseEquals matches bodies whose cause field equals cause exactly.
func CauseEquals(cause string) func(apierr.ServerErrorBody) bool {
	return func(body apierr.ServerErrorBody) bool {
		return body.Cause == cause
	}
}

// DescriptionContains matches bodies whose description contains substr.
// The comparison is case-sensitive.
func DescriptionContains(substr string) func(apierr.ServerErrorBody) bool {
	return func(body apierr.ServerErrorBody) bool {
		return strings.Contains(body.Description, substr)
	}
}

// DefaultForbiddenRules returns the rules applied to 403 responses of the
// authentication server, in evaluation order.
//
// "Invalid credentials. Invalid username or password." must match the
// username/password rule before the broader "Invalid credentials" rule.
func DefaultForbiddenRules() []Rule {
	return []Rule{
		{
			Name:  "user_migrated",
			Match: CauseEquals("UserMigratedException"),
			Kind:  apierr.ErrUserMigrated,
		},
		{
			Name:  "invalid_credentials",
			Match: DescriptionContains("username or password"),
			Kind:  apierr.ErrInvalidCredentials,
		},
		{
			Name:  "invalid_access_token",
			Match: DescriptionContains("Invalid token"),
			Kind:  apierr.ErrInvalidAccessToken,
		},
		{
			Name:  "authentication_refused",
			Match: DescriptionContains("Invalid credentials"),
			Kind:  apierr.ErrAuthenticationRefused,
		},
	}
}
