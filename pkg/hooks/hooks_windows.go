//go:build windows

// Package hooks implements components F and G of the shim: the hook
// installer that patches a fixed set of Win32/NT file API entry points
// (trampoline_windows.go), and the per-API detour bodies that parse a
// path argument, consult the path registry, and forward to the original
// function with the path substituted when a mapping applies.
//
// This file is grounded on the original Rust implementation's
// src/hooks.rs (see original_source/_INDEX.md), generalized from its
// retour-based static_detour! macros to this package's own
// trampoline/Install mechanism, and written in the idiom of the
// teacher's windows-specific files such as
// pkg/filesystem/locking/locker_windows.go and
// pkg/filesystem/open_windows.go (manual NewLazySystemDLL bindings,
// golang.org/x/sys/windows types, fmt.Errorf %w wrapping).
package hooks

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/thunderstore-io/unreal-shimloader/internal/winapi"
	"github.com/thunderstore-io/unreal-shimloader/pkg/enumstate"
	"github.com/thunderstore-io/unreal-shimloader/pkg/logging"
	"github.com/thunderstore-io/unreal-shimloader/pkg/paths"
)

var log = logging.RootLogger.Sublogger("hooks")

// state holds everything the detour bodies need to do their work: the
// published path registry and the enumeration table. It's set once by
// InstallAll and read concurrently thereafter by every detour, which is
// safe because both fields are themselves safe for concurrent read
// access after initialization (spec.md §5).
var state struct {
	registry *paths.Registry
	enum     *enumstate.Table
}

var (
	kernel32dll = windows.NewLazySystemDLL("kernel32.dll")

	hCreateFileW           *Hook
	hNtCreateFile          *Hook
	hGetFileAttributesW    *Hook
	hGetFileAttributesExW  *Hook
	hFindFirstFileW        *Hook
	hFindFirstFileExW      *Hook
	hFindNextFileW         *Hook
	hFindClose             *Hook
	hLoadLibraryW          *Hook
	hAddDllDirectory       *Hook
)

// InstallAll installs every hook this shim needs, in one fail-fast pass:
// if any single detour fails to install, it returns an error immediately.
// Hooks installed before the failing one are not rolled back; state is
// set before the first hook is installed, so they never see an
// uninitialized state object. The caller must treat the error as fatal
// (spec.md §4.F — partial arming would produce an inconsistent view of
// the filesystem).
func InstallAll(registry *paths.Registry, enum *enumstate.Table) error {
	state.registry = registry
	state.enum = enum

	specs := []struct {
		dll    *windows.LazyDLL
		name   string
		detour uintptr
		slot   **Hook
	}{
		{kernel32dll, "CreateFileW", syscall.NewCallback(createFileWDetour), &hCreateFileW},
		{winapi.NtdllForHooks(), "NtCreateFile", syscall.NewCallback(ntCreateFileDetour), &hNtCreateFile},
		{kernel32dll, "GetFileAttributesW", syscall.NewCallback(getFileAttributesWDetour), &hGetFileAttributesW},
		{kernel32dll, "GetFileAttributesExW", syscall.NewCallback(getFileAttributesExWDetour), &hGetFileAttributesExW},
		{kernel32dll, "FindFirstFileW", syscall.NewCallback(findFirstFileWDetour), &hFindFirstFileW},
		{kernel32dll, "FindFirstFileExW", syscall.NewCallback(findFirstFileExWDetour), &hFindFirstFileExW},
		{kernel32dll, "FindNextFileW", syscall.NewCallback(findNextFileWDetour), &hFindNextFileW},
		{kernel32dll, "FindClose", syscall.NewCallback(findCloseDetour), &hFindClose},
		{kernel32dll, "LoadLibraryW", syscall.NewCallback(loadLibraryWDetour), &hLoadLibraryW},
		{kernel32dll, "AddDllDirectory", syscall.NewCallback(addDllDirectoryDetour), &hAddDllDirectory},
	}

	for _, s := range specs {
		hook, err := Install(s.dll, s.name, s.detour)
		if err != nil {
			return fmt.Errorf("unable to install hook for %s: %w", s.name, err)
		}
		*s.slot = hook
		log.Debugf("installed hook for %s", s.name)
	}

	return nil
}

// decodeAndRemap is the common "decode -> try remap" step shared by
// every detour that takes a plain wide-string path argument.
func decodeAndRemap(raw *uint16) (original, remapped paths.NormalizedPath, matched bool) {
	original = paths.DecodeWide(wideStringUnits(raw))
	if remapped, matched = state.registry.TryRemap(original); !matched {
		remapped = original
	}
	return original, remapped, matched
}

// wideStringUnits reads a null-terminated wide string from a raw
// pointer into a Go slice of UTF-16 code units, without the terminator.
// It tolerates a nil pointer (returns an empty slice) rather than
// dereferencing it, since a decode failure must never crash the host
// (spec.md §4.A).
func wideStringUnits(raw *uint16) []uint16 {
	if raw == nil {
		return nil
	}
	// windows.UTF16PtrToString walks the buffer itself looking for the
	// terminator; re-encoding through it keeps this package from having
	// to hand-roll an unbounded pointer walk.
	s := windows.UTF16PtrToString(raw)
	return utf16Units(s)
}

func utf16Units(s string) []uint16 {
	units, err := windows.UTF16FromString(s)
	if err != nil || len(units) == 0 {
		return nil
	}
	return units[:len(units)-1] // drop the null terminator UTF16FromString appends
}

// rawOrRemapped implements the pass-through guard from spec.md §4.G: if
// the decoded and remapped forms are equal, the original pointer is
// forwarded unchanged (avoiding an allocation and preserving pointer
// identity); otherwise a freshly encoded wide buffer for the remapped
// path is returned, along with the pointer into it to forward.
func rawOrRemapped(rawPath *uint16, original, remapped paths.NormalizedPath) (forward *uint16, keepAlive []uint16) {
	if original.Equal(remapped) {
		return rawPath, nil
	}
	encoded := paths.EncodeWide(remapped)
	return &encoded[0], encoded
}

// --- CreateFileW ---

func createFileWDetour(
	lpFileName *uint16,
	dwDesiredAccess uint32,
	dwShareMode uint32,
	lpSecurityAttributes uintptr,
	dwCreationDisposition uint32,
	dwFlagsAndAttributes uint32,
	hTemplateFile windows.Handle,
) (handle windows.Handle) {
	original, remapped, matched := decodeAndRemap(lpFileName)
	forward, keepAlive := rawOrRemapped(lpFileName, original, remapped)
	if matched {
		log.Debugf("CreateFileW %s -> %s", original, remapped)
	}

	r1, _, _ := hCreateFileW.CallOriginal(
		uintptr(unsafe.Pointer(forward)),
		uintptr(dwDesiredAccess),
		uintptr(dwShareMode),
		lpSecurityAttributes,
		uintptr(dwCreationDisposition),
		uintptr(dwFlagsAndAttributes),
		uintptr(hTemplateFile),
	)
	runtimeKeepAlive(keepAlive)
	return windows.Handle(r1)
}

// --- NtCreateFile ---

func ntCreateFileDetour(
	fileHandle *windows.Handle,
	desiredAccess uint32,
	objectAttributes *winapi.ObjectAttributes,
	ioStatusBlock *winapi.IOStatusBlock,
	allocationSize *int64,
	fileAttributes uint32,
	shareAccess uint32,
	createDisposition uint32,
	createOptions uint32,
	eaBuffer unsafe.Pointer,
	eaLength uint32,
) (ntstatus uintptr) {
	callOriginal := func(oa *winapi.ObjectAttributes) uintptr {
		r1, _, _ := hNtCreateFile.CallOriginal(
			uintptr(unsafe.Pointer(fileHandle)),
			uintptr(desiredAccess),
			uintptr(unsafe.Pointer(oa)),
			uintptr(unsafe.Pointer(ioStatusBlock)),
			uintptr(unsafe.Pointer(allocationSize)),
			uintptr(fileAttributes),
			uintptr(shareAccess),
			uintptr(createDisposition),
			uintptr(createOptions),
			uintptr(eaBuffer),
			uintptr(eaLength),
		)
		return r1
	}

	if objectAttributes == nil || objectAttributes.ObjectName == nil {
		return callOriginal(objectAttributes)
	}

	name := objectAttributes.ObjectName
	// The object name's Length is counted in bytes; the shim treats the
	// leading 4 UTF-16 code units (8 bytes) as an opaque device/root
	// prefix it must preserve untouched (spec.md §4.G).
	const prefixUnits = 4
	totalUnits := int(name.Length / 2)
	if totalUnits < prefixUnits || name.Buffer == nil {
		return callOriginal(objectAttributes)
	}

	allUnits := unsafe.Slice(name.Buffer, totalUnits)
	prefix := append([]uint16(nil), allUnits[:prefixUnits]...)

	bodyUnits := allUnits[prefixUnits:]
	if nul := indexNull(bodyUnits); nul >= 0 {
		bodyUnits = bodyUnits[:nul]
	}

	originalPath := paths.DecodeWide(bodyUnits)
	if hasSystemPrefix(originalPath) {
		return callOriginal(objectAttributes)
	}

	remapped, matched := state.registry.TryRemap(originalPath)
	if !matched {
		return callOriginal(objectAttributes)
	}

	log.Debugf("NtCreateFile %s -> %s", originalPath, remapped)

	newBody := paths.EncodeWide(remapped)
	newBody = newBody[:len(newBody)-1] // drop the null EncodeWide appended; we add our own below

	newUnits := make([]uint16, 0, prefixUnits+len(newBody)+1)
	newUnits = append(newUnits, prefix...)
	newUnits = append(newUnits, newBody...)
	newUnits = append(newUnits, 0)

	usedBytes := (prefixUnits + len(newBody)) * 2
	newUnicode := &winapi.UnicodeString{
		Length:        uint16(usedBytes),
		MaximumLength: uint16(usedBytes + 2),
		Buffer:        &newUnits[0],
	}

	newAttrs := *objectAttributes
	newAttrs.ObjectName = newUnicode

	result := callOriginal(&newAttrs)
	// newUnits and newUnicode must outlive the forwarded call above;
	// keep them reachable until after it returns (spec.md's "buffer must
	// remain live until the OS returns"). The substitution is made in a
	// copy of objectAttributes, so the caller's structure is never
	// modified and nothing needs restoring (spec.md §4.G).
	runtimeKeepAlive(newUnits)
	runtimeKeepAlive(newUnicode)
	return result
}

// --- GetFileAttributesW / GetFileAttributesExW ---

func getFileAttributesWDetour(lpFileName *uint16) uint32 {
	original, remapped, matched := decodeAndRemap(lpFileName)
	forward, keepAlive := rawOrRemapped(lpFileName, original, remapped)
	if matched {
		log.Debugf("GetFileAttributesW %s -> %s", original, remapped)
	}

	r1, _, _ := hGetFileAttributesW.CallOriginal(uintptr(unsafe.Pointer(forward)))
	runtimeKeepAlive(keepAlive)
	return uint32(r1)
}

func getFileAttributesExWDetour(lpFileName *uint16, infoLevelID uint32, fileInformation unsafe.Pointer) int32 {
	original, remapped, matched := decodeAndRemap(lpFileName)
	forward, keepAlive := rawOrRemapped(lpFileName, original, remapped)
	if matched {
		log.Debugf("GetFileAttributesExW %s -> %s", original, remapped)
	}

	r1, _, _ := hGetFileAttributesExW.CallOriginal(
		uintptr(unsafe.Pointer(forward)),
		uintptr(infoLevelID),
		uintptr(fileInformation),
	)
	runtimeKeepAlive(keepAlive)
	return int32(r1)
}

// --- FindFirstFileW / FindFirstFileExW / FindNextFileW / FindClose ---

func synthesizedEntries() []enumstate.Entry {
	roots := state.registry.VirtualRoots()
	entries := make([]enumstate.Entry, len(roots))
	for i, r := range roots {
		entries[i] = enumstate.Entry{Name: baseName(r.String())}
	}
	return entries
}

func findFirstFileWDetour(lpFileName *uint16, lpFindFileData *winapi.Win32FindDataW) (handle windows.Handle) {
	path := paths.DecodeWide(wideStringUnits(lpFileName))
	if matchesEnumerationSentinel(path) {
		return synthesizeFindFirst(lpFindFileData)
	}

	remapped, matched := state.registry.TryRemap(path)
	if !matched {
		remapped = path
	}
	forward, keepAlive := rawOrRemapped(lpFileName, path, remapped)

	r1, _, _ := hFindFirstFileW.CallOriginal(
		uintptr(unsafe.Pointer(forward)),
		uintptr(unsafe.Pointer(lpFindFileData)),
	)
	runtimeKeepAlive(keepAlive)
	return windows.Handle(r1)
}

func findFirstFileExWDetour(
	lpFileName *uint16,
	infoLevelID uint32,
	lpFindFileData unsafe.Pointer,
	searchOp uint32,
	searchFilter uintptr,
	additionalFlags uint32,
) (handle windows.Handle) {
	path := paths.DecodeWide(wideStringUnits(lpFileName))
	if matchesEnumerationSentinel(path) {
		return synthesizeFindFirst((*winapi.Win32FindDataW)(lpFindFileData))
	}

	remapped, matched := state.registry.TryRemap(path)
	if !matched {
		remapped = path
	}
	forward, keepAlive := rawOrRemapped(lpFileName, path, remapped)

	r1, _, _ := hFindFirstFileExW.CallOriginal(
		uintptr(unsafe.Pointer(forward)),
		uintptr(infoLevelID),
		uintptr(lpFindFileData),
		uintptr(searchOp),
		searchFilter,
		uintptr(additionalFlags),
	)
	runtimeKeepAlive(keepAlive)
	return windows.Handle(r1)
}

// syntheticHandleMarker is ORed into every synthetic handle returned to
// the host so that it can never collide with a real HANDLE value.
// enumstate already starts its counter at a high offset; this is an
// additional marker bit kept distinct from that counter so the two
// concerns (non-collision, and "is this handle mine") stay separable.
const syntheticHandleMarker = uintptr(0x1) << 47

func synthesizeFindFirst(out *winapi.Win32FindDataW) windows.Handle {
	handle, first, ok := state.enum.Open(synthesizedEntries())
	if !ok {
		// No virtual roots registered at all; report file-not-found
		// immediately, matching the "empty enumeration" case of a real
		// FindFirstFile on an empty directory.
		winapi.SetLastError(winapi.ErrorFileNotFound)
		return windows.InvalidHandle
	}

	if out != nil {
		winapi.PopulateDirectoryEntry(out, first.Name)
	}
	log.Debugf("synthesized enumeration handle %#x, first entry %q", handle, first.Name)
	return windows.Handle(handle | syntheticHandleMarker)
}

func isSyntheticHandle(h windows.Handle) (uintptr, bool) {
	raw := uintptr(h)
	if raw&syntheticHandleMarker == 0 {
		return 0, false
	}
	key := raw &^ syntheticHandleMarker
	return key, state.enum.IsSynthetic(key)
}

func findNextFileWDetour(hFindFile windows.Handle, lpFindFileData *winapi.Win32FindDataW) (ok int32) {
	if key, synthetic := isSyntheticHandle(hFindFile); synthetic {
		entry, found := state.enum.Next(key)
		if !found {
			winapi.SetLastError(winapi.ErrorNoMoreFiles)
			return 0
		}
		winapi.PopulateDirectoryEntry(lpFindFileData, entry.Name)
		return 1
	}

	r1, _, _ := hFindNextFileW.CallOriginal(
		uintptr(hFindFile),
		uintptr(unsafe.Pointer(lpFindFileData)),
	)
	return int32(r1)
}

func findCloseDetour(hFindFile windows.Handle) (ok int32) {
	if key, synthetic := isSyntheticHandle(hFindFile); synthetic {
		state.enum.Close(key)
		return 1
	}

	r1, _, _ := hFindClose.CallOriginal(uintptr(hFindFile))
	return int32(r1)
}

// --- LoadLibraryW / AddDllDirectory ---

func loadLibraryWDetour(lpLibFileName *uint16) (handle windows.Handle) {
	original, remapped, matched := decodeAndRemap(lpLibFileName)
	forward, keepAlive := rawOrRemapped(lpLibFileName, original, remapped)
	if matched {
		log.Debugf("LoadLibraryW %s -> %s", original, remapped)
	}

	r1, _, _ := hLoadLibraryW.CallOriginal(uintptr(unsafe.Pointer(forward)))
	runtimeKeepAlive(keepAlive)
	return windows.Handle(r1)
}

func addDllDirectoryDetour(newDirectory *uint16) uintptr {
	original, remapped, matched := decodeAndRemap(newDirectory)
	forward, keepAlive := rawOrRemapped(newDirectory, original, remapped)
	if matched {
		log.Debugf("AddDllDirectory %s -> %s", original, remapped)
	}

	r1, _, _ := hAddDllDirectory.CallOriginal(uintptr(unsafe.Pointer(forward)))
	runtimeKeepAlive(keepAlive)
	return r1
}

// runtimeKeepAlive is a thin wrapper over runtime.KeepAlive, used for
// buffers substituted into OS structures that must outlive the
// forwarded call (spec.md §4.G, §9).
func runtimeKeepAlive(v interface{}) {
	runtime.KeepAlive(v)
}
