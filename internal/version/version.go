// Package version holds build identification, set via -ldflags at release.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
)

// String formats the version line printed by `folio version`.
func String() string {
	return fmt.Sprintf("folio %s (%s)", Version, Commit)
}
