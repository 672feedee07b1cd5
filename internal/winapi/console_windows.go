//go:build windows

package winapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procAllocConsole = kernel32.NewProc("AllocConsole")

	user32        = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

// MessageBoxType mirrors the subset of MB_* style flags this shim uses.
type MessageBoxType uint32

const (
	MessageBoxOK          MessageBoxType = 0x00000000
	MessageBoxIconError   MessageBoxType = 0x00000010
	MessageBoxSystemModal MessageBoxType = 0x00001000
)

// AllocConsole attaches a new console to the calling process, the same
// call the original implementation makes under a debug-only compile-time
// gate (see cmd/shimloader, which gates this at runtime instead).
func AllocConsole() error {
	r1, _, err := procAllocConsole.Call()
	if r1 == 0 {
		return err
	}
	return nil
}

// MessageBoxW shows a native message box with the given title and text.
// It is used only on the fatal-panic path, where there is no console or
// log file guaranteed to be visible to whoever is running the host game.
func MessageBoxW(title, text string, style MessageBoxType) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	textPtr, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return
	}
	procMessageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(textPtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(style),
	)
}
