//go:build windows

package main

import (
	"github.com/spf13/pflag"
)

// modConfig holds the three user-facing directory overrides the host
// forwards on its command line, plus the disable switch. All fields are
// optional; if none of the three directories are set the shim leaves the
// game running unmodified (spec.md §6).
type modConfig struct {
	modDir       string
	pakDir       string
	cfgDir       string
	disableMods  bool
}

// parseFlags reads --mod-dir, --pak-dir, --cfg-dir, and --disable-mods
// out of the process's argument vector. Unknown flags are tolerated and
// ignored: the shim is loaded into a game process whose own argv may
// carry any number of engine flags this shim has no opinion about.
func parseFlags(args []string) modConfig {
	fs := pflag.NewFlagSet("shimloader", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	fs.Usage = func() {}
	fs.SetOutput(discardWriter{})

	var cfg modConfig
	fs.StringVar(&cfg.modDir, "mod-dir", "", "directory to virtualize as the script mod root")
	fs.StringVar(&cfg.pakDir, "pak-dir", "", "directory to virtualize as the blueprint pak root")
	fs.StringVar(&cfg.cfgDir, "cfg-dir", "", "directory to virtualize as the config root")
	fs.BoolVar(&cfg.disableMods, "disable-mods", false, "skip hook installation and ue4ss loading entirely")

	// A parse error here means the host's own argv didn't tokenize the
	// way pflag expects; fall back to vanilla (hook-free) behavior rather
	// than letting a malformed third-party flag take down the host.
	if err := fs.Parse(args); err != nil {
		return modConfig{}
	}

	return cfg
}

// anyDirectorySet reports whether the host requested virtualization at
// all. If not, the shim must not install any hooks (spec.md §6).
func (c modConfig) anyDirectorySet() bool {
	return c.modDir != "" || c.pakDir != "" || c.cfgDir != ""
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
