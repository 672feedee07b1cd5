//go:build windows

// Package winapi mirrors the small slice of NT kernel and Win32
// structure layouts this shim needs that golang.org/x/sys/windows does
// not expose directly: the NT UNICODE_STRING/OBJECT_ATTRIBUTES pair
// NtCreateFile takes its path through, and the WIN32_FIND_DATAW shape
// the find-file family fills in. Everything here is a plain struct
// mirror plus a couple of NewLazySystemDLL-bound procedures, in the same
// spirit as the teacher's pkg/filesystem/locking/locker_windows.go
// binding LockFileEx/UnlockFileEx by hand.
package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// UnicodeString mirrors the kernel's UNICODE_STRING: a counted
// (length-in-bytes) wide string, as found embedded in OBJECT_ATTRIBUTES.
type UnicodeString struct {
	Length        uint16
	MaximumLength uint16
	Buffer        *uint16
}

// ObjectAttributes mirrors the kernel's OBJECT_ATTRIBUTES structure,
// restricted to the fields the shim's NtCreateFile detour needs to read
// or rewrite.
type ObjectAttributes struct {
	Length                   uint32
	RootDirectory            windows.Handle
	ObjectName               *UnicodeString
	Attributes               uint32
	SecurityDescriptor       uintptr
	SecurityQualityOfService uintptr
}

// IOStatusBlock mirrors the kernel's IO_STATUS_BLOCK output parameter.
type IOStatusBlock struct {
	StatusOrPointer uintptr
	Information     uintptr
}

// Win32FindDataW mirrors WIN32_FIND_DATAW, the structure the
// FindFirstFile/FindNextFile family fills in for each directory entry.
type Win32FindDataW struct {
	FileAttributes    uint32
	CreationTime      windows.Filetime
	LastAccessTime    windows.Filetime
	LastWriteTime     windows.Filetime
	FileSizeHigh      uint32
	FileSizeLow       uint32
	Reserved0         uint32
	Reserved1         uint32
	FileName          [260]uint16
	AlternateFileName [14]uint16
}

// PopulateDirectoryEntry fills data with a synthesized directory entry
// named name: attributes marking it a directory, and zeroed timestamps
// and size, per spec.md §4.E. The name is zero-padded into the
// fixed-width FileName buffer and truncated to its capacity (260 UTF-16
// code units, matching MAX_PATH) if it doesn't fit.
func PopulateDirectoryEntry(data *Win32FindDataW, name string) {
	*data = Win32FindDataW{
		FileAttributes: windows.FILE_ATTRIBUTE_DIRECTORY,
	}

	units := windows.StringToUTF16(name)
	n := copy(data.FileName[:], units)
	if n < len(data.FileName) {
		// StringToUTF16 already null-terminates; copy stopped either at
		// that null or at the buffer's capacity. Zero any remainder so
		// no stale bytes leak into the caller's structure.
		for i := n; i < len(data.FileName); i++ {
			data.FileName[i] = 0
		}
	} else {
		data.FileName[len(data.FileName)-1] = 0
	}
}

var (
	ntdll = windows.NewLazySystemDLL("ntdll.dll")

	procNtCreateFile = ntdll.NewProc("NtCreateFile")
)

// NtdllForHooks exposes the package's ntdll.dll handle so pkg/hooks can
// install its NtCreateFile detour against the same LazyDLL this package
// uses for its own pass-through binding.
func NtdllForHooks() *windows.LazyDLL {
	return ntdll
}

var (
	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	procSetLastError = kernel32.NewProc("SetLastError")
)

// Win32 last-error codes the find-file synthesis path needs to report.
const (
	ErrorFileNotFound = 2
	ErrorNoMoreFiles  = 18
)

// SetLastError sets the calling thread's last-error value, the same way
// the real find-file implementation would on exhaustion or failure.
func SetLastError(code uint32) {
	procSetLastError.Call(uintptr(code))
}

// NtCreateFile invokes ntdll.dll's exported NtCreateFile entry point.
// Once pkg/hooks has patched that entry point, a call through this
// binding runs the detour; the detour's own pass-through path forwards
// through its hook's trampoline instead of this binding.
func NtCreateFile(
	fileHandle *windows.Handle,
	desiredAccess uint32,
	objectAttributes *ObjectAttributes,
	ioStatusBlock *IOStatusBlock,
	allocationSize *int64,
	fileAttributes uint32,
	shareAccess uint32,
	createDisposition uint32,
	createOptions uint32,
	eaBuffer unsafe.Pointer,
	eaLength uint32,
) (ntstatus uintptr) {
	r0, _, _ := procNtCreateFile.Call(
		uintptr(unsafe.Pointer(fileHandle)),
		uintptr(desiredAccess),
		uintptr(unsafe.Pointer(objectAttributes)),
		uintptr(unsafe.Pointer(ioStatusBlock)),
		uintptr(unsafe.Pointer(allocationSize)),
		uintptr(fileAttributes),
		uintptr(shareAccess),
		uintptr(createDisposition),
		uintptr(createOptions),
		uintptr(eaBuffer),
		uintptr(eaLength),
	)
	return r0
}
