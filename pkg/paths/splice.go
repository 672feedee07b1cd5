package paths

// Splice rewrites path by replacing its source-root prefix with the
// target root, keeping the remainder. It returns false if path is not
// under source (component-wise, via NormalizedPath.StartsWith).
//
// If path equals source exactly, the result is target itself. Otherwise
// the result is target joined with the remainder of path after source,
// where the remainder preserves path's original (source-case)
// components — the acknowledged asymmetry noted in spec.md §4.C: callers
// get a path in the target's case joined with a remainder in the
// original (not canonical) case, which is safe because downstream
// Windows filesystems are themselves case-insensitive.
func Splice(path, source, target NormalizedPath) (NormalizedPath, bool) {
	remainder, ok := path.StripPrefix(source)
	if !ok {
		return NormalizedPath{}, false
	}
	return target.Join(remainder), true
}
