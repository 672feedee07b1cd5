// Package shimloader holds the small pieces of process-wide identity the
// rest of the shim needs: a version string, a debug flag, and a
// per-process instance identifier for log correlation. It plays the same
// role the teacher's pkg/mutagen package plays for the Mutagen daemon,
// scaled down to what a single injected DLL needs.
package shimloader

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

const (
	// VersionMajor represents the current major version of the shim.
	VersionMajor = 0
	// VersionMinor represents the current minor version of the shim.
	VersionMinor = 1
	// VersionPatch represents the current patch version of the shim.
	VersionPatch = 0
)

// Version is the shim's dotted version string.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)

// DebugEnabled controls whether verbose debug logging is enabled; the
// optional debug console is controlled separately by DebugConsole. It is set from the SHIMLOADER_DEBUG
// environment variable so that it can be toggled without rebuilding,
// unlike the original Rust implementation's compile-time
// cfg(debug_assertions) gate (see SPEC_FULL.md's "Debug-only console
// allocation" note).
var DebugEnabled bool

// DebugConsole controls whether the bootstrap allocates a console window
// for the host process. The original implementation gates AllocConsole on
// a compile-time cfg(debug_assertions); a shipped Go binary carries no
// such distinction, so this is a separate, narrower environment variable
// from DebugEnabled rather than folding console allocation into general
// verbose logging.
var DebugConsole bool

func init() {
	DebugEnabled = os.Getenv("SHIMLOADER_DEBUG") == "1"
	DebugConsole = os.Getenv("SHIMLOADER_DEBUG_CONSOLE") == "1"
}

// InstanceID is a per-process identifier stamped into the first log line
// emitted by a shim instance, so that logs from multiple shim loads
// across UE4SS hot-reloads can be told apart. It is generated once at
// process start.
var InstanceID = uuid.NewString()
