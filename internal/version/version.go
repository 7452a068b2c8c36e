// Package version holds build identity, overridable at link time.
package version

var (
	AppName = "lavabot"
	Version = "dev"
)
