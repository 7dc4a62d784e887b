// Package cmdutil holds the helpers shared by the nidhogg command groups.
package cmdutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/steviee/nidhogg/pkg/apierr"
)

// Output is the JSON envelope every command writes in --json mode.
type Output struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// IsJSONOutput reports whether --json (or NIDHOGG_JSON) is set.
func IsJSONOutput() bool {
	return viper.GetBool("json")
}

// WriteJSON writes out as indented JSON.
func WriteJSON(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

// WriteSuccess writes a success envelope carrying data.
func WriteSuccess(w io.Writer, data interface{}, message string) error {
	return WriteJSON(w, Output{
		Status:  "success",
		Data:    data,
		Message: message,
	})
}

// OutputError writes err as an error envelope in JSON mode and returns it.
func OutputError(w io.Writer, jsonOutput bool, err error) error {
	if jsonOutput {
		_ = WriteJSON(w, Output{
			Status: "error",
			Error:  err.Error(),
			Kind:   KindName(err),
		})
	}
	return err
}

// KindName returns the snake_case name of err's API error kind, or "" for
// errors that did not come from the API layer.
func KindName(err error) string {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		return ""
	}
	return apierr.KindName(apiErr.Kind)
}
