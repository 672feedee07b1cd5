//go:build windows

package main

import (
	"fmt"

	"github.com/thunderstore-io/unreal-shimloader/internal/winapi"
	"github.com/thunderstore-io/unreal-shimloader/pkg/logging"
)

// recoverToMessageBox is deferred at the top of the bootstrap goroutine.
// If bootstrap panics, the host process would otherwise simply die with
// no indication of why (there is no console and no shell attached by
// default); this logs the panic and shows a native message box with it,
// the same shape of contract the original implementation's panic hook
// provides.
func recoverToMessageBox() {
	r := recover()
	if r == nil {
		return
	}

	message := fmt.Sprintf("unreal-shimloader has crashed:\n\n%v", r)
	logging.RootLogger.Error(fmt.Errorf("%s", message))

	winapi.MessageBoxW(
		"unreal-shimloader",
		message,
		winapi.MessageBoxOK|winapi.MessageBoxIconError|winapi.MessageBoxSystemModal,
	)
}
