//go:build windows

package main

import "C"

import "github.com/thunderstore-io/unreal-shimloader/pkg/shimloader"

// ShimloaderVersion is exported so that a host or diagnostic tool loading
// this DLL directly (rather than having it injected) can confirm which
// build it's looking at without parsing the log file. All real
// initialization happens in this package's init (see bootstrap_windows.go)
// rather than behind this export, since the Go runtime already runs init
// functions before any export is reachable — there is no need to hand-roll
// a DllMain override just to get a DLL_PROCESS_ATTACH hook.
//
//export ShimloaderVersion
func ShimloaderVersion() *C.char {
	return C.CString(shimloader.Version)
}

func main() {}
