package mojang

import "errors"

// ErrProfileNotFound is returned by GetProfile when no profile has the
// requested id.
var ErrProfileNotFound = errors.New("profile not found")
