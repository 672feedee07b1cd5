package paths

import "testing"

func TestCaseInsensitiveEquality(t *testing.T) {
	a := New(`C:\Game\MODS`)
	b := New(`c:\game\mods`)
	if !a.Equal(b) {
		t.Fatalf("expected %q and %q to be equal", a, b)
	}
}

func TestCleansDotComponents(t *testing.T) {
	p := New(`C:\Game\..\Game\Mods\.\test.lua`)
	want := `c:\game\mods\test.lua`
	if p.Canonical() != want {
		t.Fatalf("got canonical %q, want %q", p.Canonical(), want)
	}
}

func TestLeadingParentPreserved(t *testing.T) {
	// A ".." chain above the root cannot be resolved lexically and must
	// be preserved verbatim rather than dropped.
	p := New(`..\..\Mods`)
	want := `..\..\mods`
	if p.Canonical() != want {
		t.Fatalf("got canonical %q, want %q", p.Canonical(), want)
	}
}

func TestDriveParentPreserved(t *testing.T) {
	// ".." immediately after a drive prefix cannot pop the drive itself.
	p := New(`C:\..\Mods`)
	want := `c:\..\mods`
	if p.Canonical() != want {
		t.Fatalf("got canonical %q, want %q", p.Canonical(), want)
	}
}

func TestStartsWith(t *testing.T) {
	parent := New(`C:\Game\Mods`)
	child := New(`C:\Game\Mods\test.lua`)
	other := New(`C:\Other\Mods`)

	if !child.StartsWith(parent) {
		t.Fatal("expected child to start with parent")
	}
	if other.StartsWith(parent) {
		t.Fatal("expected unrelated path not to start with parent")
	}
	if parent.StartsWith(child) {
		t.Fatal("expected parent not to start with its child")
	}
}

func TestStartsWithRejectsSimilarPrefix(t *testing.T) {
	// A textual prefix match ("C:\GameBackup" vs "C:\Game") must not be
	// mistaken for a component-wise prefix match.
	backup := New(`C:\GameBackup`)
	game := New(`C:\Game`)
	if backup.StartsWith(game) {
		t.Fatal("C:\\GameBackup must not be considered a child of C:\\Game")
	}
}

func TestStripPrefix(t *testing.T) {
	parent := New(`C:\Game\Mods`)
	child := New(`C:\Game\Mods\test.lua`)

	remainder, ok := child.StripPrefix(parent)
	if !ok {
		t.Fatal("expected StripPrefix to succeed")
	}
	if remainder != "test.lua" {
		t.Fatalf("got remainder %q, want %q", remainder, "test.lua")
	}
}

func TestStripPrefixPreservesOriginalCase(t *testing.T) {
	parent := New(`c:\game\mods`)
	child := New(`C:\Game\Mods\SubDir\Test.lua`)

	remainder, ok := child.StripPrefix(parent)
	if !ok {
		t.Fatal("expected StripPrefix to succeed")
	}
	if remainder != `SubDir\Test.lua` {
		t.Fatalf("got remainder %q, want %q", remainder, `SubDir\Test.lua`)
	}
}

func TestForwardSlashesNormalized(t *testing.T) {
	p := New(`C:/Game/Mods/test.lua`)
	want := `C:\Game\Mods\test.lua`
	if p.String() != want {
		t.Fatalf("got %q, want %q", p.String(), want)
	}
}

func TestUNCPathPreserved(t *testing.T) {
	p := New(`\\server\share\file.txt`)
	if p.Canonical()[:2] != `\\` {
		t.Fatalf("expected UNC prefix to survive normalization, got %q", p.Canonical())
	}
}

func TestEmptyPath(t *testing.T) {
	p := New("")
	if p.String() != "." {
		t.Fatalf("expected empty path to normalize to \".\", got %q", p.String())
	}
}

func TestRootPath(t *testing.T) {
	p := New(`C:\`)
	if p.String() == "" {
		t.Fatal("root path must not normalize to an empty string")
	}
}

func TestComponentCountNeverIncreases(t *testing.T) {
	cases := []string{
		`C:\Game\.\Mods`,
		`C:\Game\Mods`,
		`.`,
		``,
		`a\.\b\.\c`,
	}
	for _, raw := range cases {
		before := len(splitRaw(raw))
		after := New(raw).componentCount()
		if after > before {
			t.Errorf("New(%q) grew from %d to %d components", raw, before, after)
		}
	}
}

// splitRaw is a test helper counting the naive component count of a raw
// path string (including "." components), for comparison against the
// cleaned count.
func splitRaw(raw string) []string {
	comps, _ := splitComponents(raw)
	return comps
}
