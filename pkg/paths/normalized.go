// Package paths implements the path-matching core of the shim: a
// case-folded, lexically cleaned path value (NormalizedPath), a pure
// splice operation for rewriting a path from one root onto another, and
// an ordered, write-once registry of source-to-target mappings.
//
// None of the logic in this package touches the filesystem or calls into
// any Windows API; it operates purely on path strings using Windows path
// semantics (backslash separator, drive prefixes, UNC roots), which keeps
// it testable on any platform.
package paths

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// separator is the path separator this package normalizes around. The shim
// only ever deals with Windows paths, regardless of the platform it is
// built for, so this is fixed rather than derived from the build's GOOS.
const separator = `\`

// fold is the Unicode case-folding transformer used to build the canonical
// comparison form of a path. Windows path comparison is Unicode
// case-insensitive, not merely ASCII case-insensitive, so a plain
// strings.ToLower would mis-compare non-ASCII mod or pak names.
var fold = cases.Fold()

// NormalizedPath is a path value combining a canonical form used for
// comparison (case-folded, with "." elided and ".." resolved lexically,
// using the backslash separator) and the original cleaned form, which
// preserves source-case components for use when forwarding to the OS.
//
// Equality and prefix tests operate on the canonical form only. The
// canonical form never contains "." components, nor interior ".."
// components, except for a leading chain above the root that cannot be
// resolved lexically.
type NormalizedPath struct {
	canonical string
	original  string
}

// New builds a NormalizedPath from a raw path string. Forward slashes are
// accepted and unified with the backslash separator. An empty input
// normalizes to ".".
func New(raw string) NormalizedPath {
	unified := strings.ReplaceAll(raw, "/", separator)
	components, leadingSeparators := splitComponents(unified)

	cleaned := cleanComponents(components)
	original := joinComponents(leadingSeparators, cleaned)
	if original == "" {
		original = "."
	}

	canonical := fold.String(original)

	return NormalizedPath{
		canonical: canonical,
		original:  original,
	}
}

// splitComponents splits a unified (backslash-separated) path into its
// non-empty components, along with the count of leading separators (so
// that UNC-style "\\server\share" and drive-root "\" prefixes survive
// the round trip).
func splitComponents(unified string) (components []string, leadingSeparators int) {
	i := 0
	for i < len(unified) && unified[i] == separator[0] {
		i++
	}
	leadingSeparators = i

	for _, part := range strings.Split(unified[i:], separator) {
		if part != "" {
			components = append(components, part)
		}
	}
	return components, leadingSeparators
}

// cleanComponents applies the canonicalization rules from the component
// list: "." is dropped; ".." pops the preceding normal component, unless
// that component is itself a root/drive-prefix/".." (in which case the
// ".." is preserved verbatim because it cannot be resolved without
// touching the filesystem).
func cleanComponents(components []string) []string {
	out := make([]string, 0, len(components))
	for _, comp := range components {
		switch {
		case comp == ".":
			// Dropped.
		case comp == "..":
			if n := len(out); n > 0 && !isUnresolvable(out[n-1]) {
				out = out[:n-1]
			} else {
				out = append(out, comp)
			}
		default:
			out = append(out, comp)
		}
	}
	return out
}

// isUnresolvable reports whether a component is a drive prefix (e.g. "C:")
// or a preserved ".." that a following ".." cannot pop through.
func isUnresolvable(comp string) bool {
	if comp == ".." {
		return true
	}
	if len(comp) == 2 && comp[1] == ':' {
		return true
	}
	return false
}

func joinComponents(leadingSeparators int, components []string) string {
	var b strings.Builder
	for i := 0; i < leadingSeparators; i++ {
		b.WriteString(separator)
	}
	for i, comp := range components {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(comp)
	}
	return b.String()
}

// String returns the original (source-case) form of the path.
func (p NormalizedPath) String() string {
	return p.original
}

// Canonical returns the case-folded, cleaned form used for comparison.
func (p NormalizedPath) Canonical() string {
	return p.canonical
}

// IsEmpty reports whether this path is the zero value (never produced by
// New, which always yields at least "."; useful for detecting a decode
// failure upstream that substituted a zero-value NormalizedPath rather
// than calling New on an empty string).
func (p NormalizedPath) IsEmpty() bool {
	return p.canonical == ""
}

// Equal reports whether two paths have the same canonical form.
func (p NormalizedPath) Equal(other NormalizedPath) bool {
	return p.canonical == other.canonical
}

// componentCount returns the number of path components in the canonical
// form (used only by tests to check the "cleaning never adds components"
// invariant).
func (p NormalizedPath) componentCount() int {
	if p.canonical == "" || p.canonical == "." {
		return 0
	}
	comps, _ := splitComponents(p.canonical)
	return len(comps)
}

// StartsWith reports whether every component of base's canonical form
// equals the corresponding component of p's canonical form. This is a
// component-wise test, not a textual prefix test: "c:\gamebackup" does not
// start with "c:\game".
func (p NormalizedPath) StartsWith(base NormalizedPath) bool {
	pComps, pLead := splitComponents(p.canonical)
	bComps, bLead := splitComponents(base.canonical)

	if pLead != bLead {
		return false
	}
	if len(bComps) > len(pComps) {
		return false
	}
	for i, comp := range bComps {
		if pComps[i] != comp {
			return false
		}
	}
	return true
}

// StripPrefix returns the path's original-case trailing components after
// removing prefix's components, plus whether prefix was in fact a
// component-wise prefix of p. The returned remainder is built from p's
// original (source-case) components, not the canonical form, so callers
// can splice it onto a target root while preserving the user-visible case
// of the tail.
func (p NormalizedPath) StripPrefix(prefix NormalizedPath) (string, bool) {
	if !p.StartsWith(prefix) {
		return "", false
	}

	originalComps, _ := splitComponents(p.original)
	prefixComps, _ := splitComponents(prefix.canonical)

	remainder := originalComps[len(prefixComps):]
	return joinComponents(0, remainder), true
}

// Join appends a plain path (not itself normalized) to this path's
// original form and re-normalizes the result.
func (p NormalizedPath) Join(tail string) NormalizedPath {
	if tail == "" {
		return p
	}
	if p.original == "." {
		return New(tail)
	}
	return New(p.original + separator + tail)
}
