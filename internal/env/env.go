package env

const AppName = "gidefdisk"

// Set at build time with -ldflags "-X github.com/ostafen/gidefdisk/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
