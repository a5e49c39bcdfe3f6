// Package version holds build information set at link time.
package version

// Version is the application version, overridden with
// -ldflags "-X github.com/ndewijer/Income-Clarity-Backend/internal/version.Version=1.2.3".
var Version = "dev"
