package apierr

import (
	"encoding/json"
	"errors"
)

// ForbiddenOperation is the "error" value the authentication server uses
// for every credential and token related 403.
const ForbiddenOperation = "ForbiddenOperationException"

var errNotErrorBody = errors.New("not a server error body")

// ServerErrorBody is the JSON payload of a non-2xx response.
type ServerErrorBody struct {
	// Error is the machine-readable kind, e.g. "ForbiddenOperationException".
	Error string `json:"error"`

	// Description is the human-readable message. The authentication server
	// sends it as "errorMessage"; some endpoints use "description".
	Description string `json:"errorMessage"`

	// Cause is present only when the server disambiguates an overloaded
	// error, e.g. "UserMigratedException".
	Cause string `json:"cause,omitempty"`
}

// UnmarshalJSON decodes the body, accepting either "errorMessage" or
// "description" for the message. A body without an "error" field or a
// message is rejected.
func (b *ServerErrorBody) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error        *string `json:"error"`
		ErrorMessage *string `json:"errorMessage"`
		Description  *string `json:"description"`
		Cause        string  `json:"cause"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Error == nil && raw.ErrorMessage == nil && raw.Description == nil {
		return errNotErrorBody
	}

	*b = ServerErrorBody{Cause: raw.Cause}
	if raw.Error != nil {
		b.Error = *raw.Error
	}
	switch {
	case raw.ErrorMessage != nil:
		b.Description = *raw.ErrorMessage
	case raw.Description != nil:
		b.Description = *raw.Description
	}
	return nil
}
