// Package data holds the request and response models of the Yggdrasil and
// Mojang APIs.
package data

import (
	"log/slog"

	"github.com/steviee/nidhogg/pkg/apierr"
)

// AccountCredentials are the username (or email) and password of an account.
// They are never persisted.
type AccountCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LogValue redacts the password.
func (c AccountCredentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", redact(c.Password)),
	)
}

// Validate checks that both fields are set.
func (c AccountCredentials) Validate() error {
	if c.Username == "" {
		return apierr.InvalidArgument("username cannot be empty")
	}
	if c.Password == "" {
		return apierr.InvalidArgument("password cannot be empty")
	}
	return nil
}

// Session is an authenticated session. A session with an empty AccessToken
// cannot be validated, refreshed or invalidated.
type Session struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
	ProfileID   string `json:"profileId,omitempty"`
	Alias       string `json:"alias,omitempty"`
}

// LogValue redacts both tokens.
func (s Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_token", redact(s.AccessToken)),
		slog.String("client_token", redact(s.ClientToken)),
		slog.String("profile_id", s.ProfileID),
		slog.String("alias", s.Alias),
	)
}

// Validate checks that the session carries an access token.
func (s Session) Validate() error {
	if s.AccessToken == "" {
		return apierr.InvalidArgument("session has no access token")
	}
	return nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[REDACTED]"
}

// Agent identifies the game a login is requested for.
type Agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// Known agents.
var (
	MinecraftAgent = Agent{Name: "Minecraft", Version: 1}
	ScrollsAgent   = Agent{Name: "Scrolls", Version: 1}
)

// GameProfile is a game profile owned by an account.
type GameProfile struct {
	ID            string `json:"id"` // no hyphens
	Name          string `json:"name"`
	Agent         string `json:"agent,omitempty"`
	UserID        string `json:"userId,omitempty"`
	CreatedAt     *int64 `json:"createdAt,omitempty"` // ms since epoch
	LegacyProfile bool   `json:"legacyProfile,omitempty"`
	Suspended     bool   `json:"suspended,omitempty"`
	Paid          bool   `json:"paid,omitempty"`
	Migrated      bool   `json:"migrated,omitempty"`
	Legacy        bool   `json:"legacy,omitempty"`
}

// UserProfile is the account behind one or more game profiles. Timestamps
// are milliseconds since the epoch.
type UserProfile struct {
	ID                string            `json:"id"`
	Email             *string           `json:"email,omitempty"`
	Username          string            `json:"username"`
	RegisterIP        *string           `json:"registerIp,omitempty"`
	MigratedFrom      *string           `json:"migratedFrom,omitempty"`
	MigratedAt        *int64            `json:"migratedAt,omitempty"`
	RegisteredAt      *int64            `json:"registeredAt,omitempty"`
	PasswordChangedAt *int64            `json:"passwordChangedAt,omitempty"`
	DateOfBirth       *int64            `json:"dateOfBirth,omitempty"`
	Suspended         *bool             `json:"suspended,omitempty"`
	Blocked           *bool             `json:"blocked,omitempty"`
	Secured           *bool             `json:"secured,omitempty"`
	Migrated          *bool             `json:"migrated,omitempty"`
	EmailVerified     *bool             `json:"emailVerified,omitempty"`
	LegacyUser        *bool             `json:"legacyUser,omitempty"`
	VerifiedByParent  *bool             `json:"verifiedByParent,omitempty"`
	Properties        []ProfileProperty `json:"properties,omitempty"`
}

// ProfileProperty is a named, optionally signed, profile property.
type ProfileProperty struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// NameHistoryEntry is one name of a profile. The original name has no
// ChangedToAt.
type NameHistoryEntry struct {
	Name        string `json:"name"`
	ChangedToAt *int64 `json:"changedToAt,omitempty"` // ms since epoch
}

// SecurityChallenge is a security question and the id its answer must carry.
type SecurityChallenge struct {
	Answer   ChallengeAnswer   `json:"answer"`
	Question ChallengeQuestion `json:"question"`
}

// ChallengeAnswer identifies the answer slot of a challenge.
type ChallengeAnswer struct {
	ID int `json:"id"`
}

// ChallengeQuestion is the question text of a challenge.
type ChallengeQuestion struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// SecurityChallengeSolve is an answer to a SecurityChallenge. ID is the
// challenge's Answer.ID.
type SecurityChallengeSolve struct {
	ID     int    `json:"id"`
	Answer string `json:"answer"`
}
