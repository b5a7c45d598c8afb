package version

// Version is set at build time with -ldflags "-X github.com/bnema/assetforge-cli/internal/version.Version=...".
var Version = "dev"
