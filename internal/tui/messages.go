package tui

// submitResultMsg is sent when the answers have been submitted
type submitResultMsg struct {
	err error
}

// clearErrorMsg is sent to clear the error message
type clearErrorMsg struct{}
