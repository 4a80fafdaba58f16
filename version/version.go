package version

// Version is overridden at build time with -ldflags "-X gamelink-suite/version.Version=...".
var Version = "v1.0.0-dev"
