// Package buildinfo holds the version string every cmd/ binary reports
// on --version. Version is overridden at link time with
// -ldflags "-X fleetml/internal/support/buildinfo.Version=...".
package buildinfo

var Version = "dev"
