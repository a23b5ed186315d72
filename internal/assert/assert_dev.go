//go:build !release

package assert

import "fmt"

// That panics with the formatted message if cond is false. It exists for
// invariants a well-typed caller cannot violate through the public API; a
// failure here means a bug in this package, not bad caller input.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
