package version

import "runtime/debug"

// Get returns the version of the application from build info
func Get() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// UserAgent identifies outgoing HTTP requests, e.g. "mtgmcp/v1.2.0".
func UserAgent() string {
	return "mtgmcp/" + Get()
}
