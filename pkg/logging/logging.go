package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/thunderstore-io/unreal-shimloader/pkg/shimloader"
)

func init() {
	// Default to standard output until Initialize redirects to the
	// shim's log file; this keeps the package usable (e.g. in tests)
	// without requiring every caller to invoke Initialize first.
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
}

// Initialize points the package-wide logger at a log file beside the
// host executable, matching the original Rust implementation's
// shimloader-log.txt (see original_source/src/lib.rs). It returns the
// opened file so the caller can keep it alive and close it on process
// exit, though in practice the shim has no teardown path (spec.md §3)
// and the file simply stays open for the life of the host process.
func Initialize(path string) (*os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create log file: %w", err)
	}

	log.SetOutput(file)
	RootLogger.Println(fmt.Sprintf(
		"unreal-shimloader %s (instance %s) -- start",
		shimloader.Version, shimloader.InstanceID,
	))

	return file, nil
}
