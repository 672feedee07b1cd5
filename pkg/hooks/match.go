// OS-agnostic matching helpers used by the Windows detour bodies
// (hooks_windows.go). Kept apart from the windows-tagged file so this
// logic can be exercised by plain `go test` on any platform, the same
// split the teacher draws between pkg/filesystem's cross-platform
// comparison helpers and its *_windows.go syscall glue.
package hooks

import "github.com/thunderstore-io/unreal-shimloader/pkg/paths"

// enumerationSentinel is the suffix (after normalization) that triggers
// synthetic enumeration in FindFirstFile/FindFirstFileEx, per spec.md §6.
// It is matched against the canonical form of the queried path's parent
// directory joined with "*", not the literal host-supplied string, so it
// is insensitive to forward/backward slashes and case.
const enumerationSentinel = `win64\mods`

// systemPrefixes are object-name prefixes that must never be remapped,
// even if they nominally fall under a registered source: the NT device
// namespace and the Windows system directory (spec.md §4.G, and the
// original Rust detour's bad_path_prefixes list).
var systemPrefixes = []string{`\device`, `c:\windows`}

func hasSystemPrefix(p paths.NormalizedPath) bool {
	canon := p.Canonical()
	for _, prefix := range systemPrefixes {
		if len(canon) >= len(prefix) && canon[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// matchesEnumerationSentinel reports whether path's canonical form is a
// query for "<something>\Win64\Mods\*" — the only pattern the host uses
// to discover mod folders (spec.md §6). Other queries under that
// directory (e.g. a query for a specific file) pass through normally.
func matchesEnumerationSentinel(path paths.NormalizedPath) bool {
	canon := path.Canonical()
	if len(canon) == 0 || canon[len(canon)-1] != '*' {
		return false
	}
	parent := trimTrailingSeparator(canon[:len(canon)-1])
	return hasSuffixComponents(parent, enumerationSentinel)
}

func trimTrailingSeparator(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\\' {
		return s[:len(s)-1]
	}
	return s
}

func hasSuffixComponents(path, suffix string) bool {
	if len(path) < len(suffix) {
		return false
	}
	tail := path[len(path)-len(suffix):]
	if tail != suffix {
		return false
	}
	// Must be a component boundary, not a mid-component match.
	return len(path) == len(suffix) || path[len(path)-len(suffix)-1] == '\\'
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

func indexNull(units []uint16) int {
	for i, u := range units {
		if u == 0 {
			return i
		}
	}
	return -1
}
