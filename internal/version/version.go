// Package version holds build information.
package version

// Version information (set by ldflags during build)
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// UserAgent returns the User-Agent sent with every API request.
func UserAgent() string {
	return "nidhogg/" + Version + " (https://github.com/steviee/nidhogg)"
}
