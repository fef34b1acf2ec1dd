// Package buildinfo carries version metadata stamped into the binary.
// Release builds set these via -ldflags:
//
//	-X 'github.com/binarybrigade/printbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/binarybrigade/printbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/binarybrigade/printbot/core/buildinfo.Date=2025-08-30T12:00:00Z'
//
// The defaults identify local development builds.
package buildinfo

var (
	// Version is the semantic version or tag of the build.
	Version = "dev"
	// Commit is the source control revision the binary was built from.
	Commit = "local"
	// Date is the build timestamp in RFC3339 format.
	Date = ""
)
