package process

import (
	"path/filepath"

	"github.com/pkg/errors"

	"os"
)

// Current represents the current process.
var Current struct {
	ExecutablePath       string
	ExecutableParentPath string
}

func init() {
	// Compute the current executable's path. This used to go through
	// github.com/kardianos/osext, which predates the standard library
	// having any equivalent; os.Executable has covered this since Go 1.8,
	// so the vendored dependency is gone.
	path, err := os.Executable()
	if err != nil {
		panic(errors.Wrap(err, "unable to compute current executable's path"))
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		panic(errors.Wrap(err, "unable to resolve current executable's path"))
	}

	Current.ExecutablePath = resolved
	Current.ExecutableParentPath = filepath.Dir(resolved)
}

// Ancestor returns the nth ancestor directory of the executable's parent
// path (Ancestor(0) is the parent directory itself). The shim uses this
// to derive the game root from the Unreal convention of placing the
// executable at <Game>/Binaries/Win64/<exe>.exe.
func Ancestor(n int) string {
	dir := Current.ExecutableParentPath
	for i := 0; i < n; i++ {
		dir = filepath.Dir(dir)
	}
	return dir
}
