package paths

import "unicode/utf16"

// DecodeWide converts a UTF-16 code-unit slice (as produced by reading a
// Windows wide C string up to, but not including, its terminating null)
// into a NormalizedPath. It is deliberately forgiving: unpaired
// surrogates and other invalid sequences are replaced with the Unicode
// replacement character rather than aborting, per spec.md §4.A — a
// decode failure must never crash the host. A nil or empty slice decodes
// to the same "." path that New("") produces, which by construction
// matches no registered source.
func DecodeWide(units []uint16) NormalizedPath {
	if len(units) == 0 {
		return New("")
	}
	return New(string(utf16.Decode(units)))
}

// EncodeWide converts a path to a null-terminated UTF-16 code-unit
// slice suitable for passing to a Windows wide-string API. The returned
// slice always carries a trailing zero code unit; callers that need a
// stable pointer must keep the slice alive (via runtime.KeepAlive or by
// retaining a reference) for the duration of the call they pass it to.
func EncodeWide(p NormalizedPath) []uint16 {
	return utf16.Encode([]rune(p.String() + "\x00"))
}
