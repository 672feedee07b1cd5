//go:build windows

// Command shimloader is the injected DLL's entry point. It is built with
// -buildmode=c-shared; bootstrap runs from this package's init, which the
// Go runtime invokes once the host process attaches the DLL and the
// runtime has finished starting up, the same point in the load sequence
// the original implementation's DllMain handled DLL_PROCESS_ATTACH at.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/thunderstore-io/unreal-shimloader/internal/winapi"
	"github.com/thunderstore-io/unreal-shimloader/pkg/enumstate"
	"github.com/thunderstore-io/unreal-shimloader/pkg/hooks"
	"github.com/thunderstore-io/unreal-shimloader/pkg/logging"
	"github.com/thunderstore-io/unreal-shimloader/pkg/paths"
	"github.com/thunderstore-io/unreal-shimloader/pkg/shimloader"
	"github.com/thunderstore-io/unreal-shimloader/process"
)

func init() {
	go bootstrap()
}

// bootstrap runs the entire shim initialization sequence: logging setup,
// the xinput1_3.dll compatibility guard, argument parsing, directory
// pre-creation, registry construction and publication, hook installation,
// and finally loading ue4ss.dll. Every failure except an unsuccessful
// debug console allocation (which only logs a warning) is fatal and
// surfaces through recoverToMessageBox.
//
// This runs on its own goroutine, rather than directly in init, because
// DLL_PROCESS_ATTACH holds the loader lock: calling LoadLibraryW (to load
// ue4ss.dll) from that context can deadlock the process. The original
// implementation sidesteps this by doing all of its work, including the
// final LoadLibraryW, synchronously inside DllMain, which the comment
// above load_ue4ss in the original source does not call out as a risk;
// this repo chooses the safer, idiomatic-for-Go shape of getting off the
// loader's thread before doing meaningful work.
func bootstrap() {
	defer recoverToMessageBox()

	exeDir := process.Current.ExecutableParentPath
	_, err := logging.Initialize(filepath.Join(exeDir, "shimloader-log.txt"))
	if err != nil {
		panic(errors.Wrap(err, "unable to initialize logging"))
	}

	if shimloader.DebugEnabled {
		logging.SetLevel(logging.LevelDebug)
	}
	if shimloader.DebugConsole {
		if err := winapi.AllocConsole(); err != nil {
			logging.RootLogger.Warn(errors.Wrap(err, "unable to allocate debug console"))
		} else {
			color.NoColor = !isatty.IsTerminal(os.Stdout.Fd())
		}
	}

	logging.RootLogger.Debugf("executable: %s", process.Current.ExecutablePath)
	logging.RootLogger.Debugf("args: %v", os.Args)

	if err := checkXinputConflict(exeDir); err != nil {
		panic(err)
	}

	cfg := parseFlags(os.Args[1:])
	if cfg.disableMods || !cfg.anyDirectorySet() {
		logging.RootLogger.Println("no virtualization directories requested; running unmodified")
		return
	}

	// process.Ancestor(0) is exe-dir itself (<Game>/Binaries/Win64); two
	// more levels up lands on <Game>, matching spec.md's "third ancestor
	// of the executable" when counted from the executable file itself
	// rather than from its containing directory.
	if !strings.EqualFold(filepath.Base(exeDir), "Win64") ||
		!strings.EqualFold(filepath.Base(process.Ancestor(1)), "Binaries") {
		panic(errors.Errorf("the game executable is not inside a <Game>/Binaries/Win64 directory: %s", exeDir))
	}
	gameRoot := process.Ancestor(2)
	logging.RootLogger.Debugf("game root: %s", gameRoot)

	if err := prepareDirectories(gameRoot, cfg); err != nil {
		panic(errors.Wrap(err, "unable to prepare virtualized directories"))
	}

	registry := buildRegistry(exeDir, gameRoot, cfg)
	if !paths.Handle.Publish(registry) {
		panic("path registry was already published; DllMain ran more than once")
	}

	if err := hooks.InstallAll(registry, enumstate.New()); err != nil {
		panic(errors.Wrap(err, "unable to install hooks"))
	}

	if err := loadUE4SS(exeDir); err != nil {
		panic(err)
	}

	logging.RootLogger.Println("unreal-shimloader initialization complete")
}

// checkXinputConflict refuses to continue if the host has also been set
// up for the xinput1_3.dll proxy-DLL UE4SS installation method, which is
// incompatible with this shim's own injection method (SPEC_FULL.md's
// "xinput1_3.dll conflict guard" supplemented feature).
func checkXinputConflict(exeDir string) error {
	xinputPath := filepath.Join(exeDir, "xinput1_3.dll")
	if _, err := os.Stat(xinputPath); err == nil {
		return fmt.Errorf(
			"shimloader is not compatible with the xinput1_3.dll UE4SS installation method.\n"+
				"1. Remove the file at %s\n"+
				"2. Ensure that ue4ss.dll exists within %s\n"+
				"3. Run the game again.",
			xinputPath, exeDir,
		)
	}
	return nil
}

// prepareDirectories creates the LogicMods and Config source directories
// under the game root, plus the three user-supplied target directories,
// matching spec.md §6's startup side effects. The exe-dir Mods source
// directory is not created here.
func prepareDirectories(gameRoot string, cfg modConfig) error {
	required := []string{
		filepath.Join(gameRoot, "Content", "Paks", "LogicMods"),
		filepath.Join(gameRoot, "Config"),
		cfg.modDir,
		cfg.pakDir,
		cfg.cfgDir,
	}
	for _, dir := range required {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create %s: %w", dir, err)
		}
	}
	return nil
}

// buildRegistry constructs the three source-to-target mappings the shim
// virtualizes, mirroring the original implementation's registration
// order exactly (lua/script mods, then blueprint paks, then config).
func buildRegistry(exeDir, gameRoot string, cfg modConfig) *paths.Registry {
	registry := paths.NewRegistry()

	registry.Register(
		paths.New(exeDir).Join("Mods"),
		paths.New(cfg.modDir),
	)
	registry.Register(
		paths.New(gameRoot).Join("Content").Join("Paks").Join("LogicMods"),
		paths.New(cfg.pakDir),
	)
	registry.Register(
		paths.New(gameRoot).Join("Config"),
		paths.New(cfg.cfgDir),
	)

	return registry
}

// loadUE4SS locates and loads the cooperating UE4SS module from next to
// the host executable. This shim's job ends here; everything past this
// point is UE4SS's own initialization.
func loadUE4SS(exeDir string) error {
	ue4ssPath := filepath.Join(exeDir, "ue4ss.dll")
	if _, err := os.Stat(ue4ssPath); err != nil {
		return fmt.Errorf("ue4ss.dll could not be found at %s: %w", ue4ssPath, err)
	}

	handle, err := windows.LoadLibrary(ue4ssPath)
	if err != nil {
		return fmt.Errorf("unable to load ue4ss.dll: %w", err)
	}
	logging.RootLogger.Debugf("loaded ue4ss.dll as module handle %#x", handle)

	return nil
}
