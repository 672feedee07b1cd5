package hooks

import (
	"testing"

	"github.com/thunderstore-io/unreal-shimloader/pkg/paths"
)

func TestMatchesEnumerationSentinel(t *testing.T) {
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"exact query", `C:\Game\Binaries\Win64\Mods\*`, true},
		{"mixed case and slashes", `c:/game/binaries/WIN64/mods/*`, true},
		{"no wildcard", `C:\Game\Binaries\Win64\Mods`, false},
		{"wrong parent", `C:\Game\Binaries\Win64\Paks\*`, false},
		{"mid-component suffix", `C:\Game\Binaries\NotWin64\Mods\*`, false},
		{"deeper query", `C:\Game\Binaries\Win64\Mods\SomeMod\*`, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := matchesEnumerationSentinel(paths.New(c.path))
			if got != c.want {
				t.Errorf("matchesEnumerationSentinel(%q) = %v, want %v", c.path, got, c.want)
			}
		})
	}
}

func TestHasSystemPrefix(t *testing.T) {
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"device namespace", `\Device\HarddiskVolume1\Game\Mods`, true},
		{"windows directory", `C:\Windows\System32\kernel32.dll`, true},
		{"game directory", `C:\Game\Mods\test.lua`, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := hasSystemPrefix(paths.New(c.path))
			if got != c.want {
				t.Errorf("hasSystemPrefix(%q) = %v, want %v", c.path, got, c.want)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	cases := []struct{ path, want string }{
		{`C:\Game\Mods`, "Mods"},
		{`Mods`, "Mods"},
		{`C:\Game\Binaries\Win64\Mods\`, ""},
	}

	for _, c := range cases {
		if got := baseName(c.path); got != c.want {
			t.Errorf("baseName(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestIndexNull(t *testing.T) {
	if got := indexNull([]uint16{'a', 'b', 0, 'c'}); got != 2 {
		t.Errorf("indexNull with terminator = %d, want 2", got)
	}
	if got := indexNull([]uint16{'a', 'b'}); got != -1 {
		t.Errorf("indexNull without terminator = %d, want -1", got)
	}
}
