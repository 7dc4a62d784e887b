package yggdrasil

import "github.com/steviee/nidhogg/pkg/data"

// AuthRequest is the body of POST /authenticate.
type AuthRequest struct {
	Agent       *data.Agent `json:"agent,omitempty"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	ClientToken string      `json:"clientToken,omitempty"`
	RequestUser bool        `json:"requestUser,omitempty"`
}

// AuthResponse is the body returned by POST /authenticate.
type AuthResponse struct {
	AccessToken       string             `json:"accessToken"`
	ClientToken       string             `json:"clientToken"`
	AvailableProfiles []data.GameProfile `json:"availableProfiles,omitempty"`
	SelectedProfile   *data.GameProfile  `json:"selectedProfile,omitempty"`
	User              *data.UserProfile  `json:"user,omitempty"`
}

// RefreshRequest is the body of POST /refresh.
type RefreshRequest struct {
	AccessToken     string            `json:"accessToken"`
	ClientToken     string            `json:"clientToken"`
	SelectedProfile *data.GameProfile `json:"selectedProfile,omitempty"`
	RequestUser     bool              `json:"requestUser,omitempty"`
}

// RefreshResponse is the body returned by POST /refresh.
type RefreshResponse struct {
	AccessToken     string            `json:"accessToken"`
	ClientToken     string            `json:"clientToken"`
	SelectedProfile *data.GameProfile `json:"selectedProfile,omitempty"`
	User            *data.UserProfile `json:"user,omitempty"`
}

// ValidationRequest is the body of POST /validate.
type ValidationRequest struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken,omitempty"`
}

// InvalidateRequest is the body of POST /invalidate.
type InvalidateRequest struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
}

// SignOutRequest is the body of POST /signout.
type SignOutRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the outcome of a login or refresh.
type AuthResult struct {
	Session data.Session

	// AvailableProfiles is empty after a refresh.
	AvailableProfiles []data.GameProfile

	// SelectedProfile is nil for accounts without a game profile.
	SelectedProfile *data.GameProfile

	// User is only set when requested.
	User *data.UserProfile
}

// LoginOptions are optional login parameters.
type LoginOptions struct {
	// Agent selects the game. Without an agent the server returns no
	// profiles.
	Agent *data.Agent

	// RequestUser asks the server to include the user profile.
	RequestUser bool
}

// RefreshOptions are optional refresh parameters.
type RefreshOptions struct {
	// SelectedProfile switches the session to another profile. The server
	// usually rejects it.
	SelectedProfile *data.GameProfile

	// RequestUser asks the server to include the user profile.
	RequestUser bool
}

func newAuthResult(accessToken, clientToken string, available []data.GameProfile, selected *data.GameProfile, user *data.UserProfile) *AuthResult {
	session := data.Session{
		AccessToken: accessToken,
		ClientToken: clientToken,
	}
	if selected != nil {
		session.ProfileID = selected.ID
		session.Alias = selected.Name
	}
	return &AuthResult{
		Session:           session,
		AvailableProfiles: available,
		SelectedProfile:   selected,
		User:              user,
	}
}
