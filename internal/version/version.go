// Package version holds build information injected with -ldflags.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/aristath/stockintel/internal/version.Version=1.2.3"
var Version = "dev"
