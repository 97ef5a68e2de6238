package remover

import (
	"fmt"

	"github.com/keyremover/keyremover/bundle"
)

// Patterns derives the glob patterns an application's support files are
// matched by: the bundle identifier, the two names, and the reverse-domain
// guess `com.*.<name>*` for apps whose plist carries no identifier.
// Patterns whose source field is empty are skipped. Order matters: the
// sweep visits them in this order.
func Patterns(info bundle.Info) []string {
	var patterns []string

	if info.BundleID != "" {
		patterns = append(patterns, info.BundleID+"*")
	}
	if info.Name != "" {
		patterns = append(patterns, info.Name+"*")
	}
	if info.DisplayName != "" {
		patterns = append(patterns, info.DisplayName+"*")
	}
	if info.Name != "" {
		patterns = append(patterns, fmt.Sprintf("com.*.%s*", info.Name))
	}

	return patterns
}
