package paths

import "testing"

func TestSpliceBasic(t *testing.T) {
	path := New(`C:\Game\Mods\test.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	got, ok := Splice(path, source, target)
	if !ok {
		t.Fatal("expected splice to succeed")
	}
	if want := `D:\MyMods\test.lua`; got.String() != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSpliceNested(t *testing.T) {
	path := New(`C:\Game\Mods\subdir\another\test.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	got, ok := Splice(path, source, target)
	if !ok {
		t.Fatal("expected splice to succeed")
	}
	if want := `D:\MyMods\subdir\another\test.lua`; got.String() != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSpliceNotUnderSource(t *testing.T) {
	path := New(`C:\Other\test.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	if _, ok := Splice(path, source, target); ok {
		t.Fatal("expected splice to fail for unrelated path")
	}
}

func TestSpliceParentDoesNotMatch(t *testing.T) {
	// A path that is a parent of source must not match.
	path := New(`C:\Game`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	if _, ok := Splice(path, source, target); ok {
		t.Fatal("expected splice to fail when path is a parent of source")
	}
}

func TestSpliceExactMatch(t *testing.T) {
	path := New(`C:\Game\Mods`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	got, ok := Splice(path, source, target)
	if !ok {
		t.Fatal("expected splice to succeed")
	}
	if got.String() != `D:\MyMods` {
		t.Fatalf("got %q, want %q", got, `D:\MyMods`)
	}
}

func TestSpliceCaseInsensitive(t *testing.T) {
	path := New(`C:\GAME\MODS\test.lua`)
	source := New(`c:\game\mods`)
	target := New(`D:\MyMods`)

	got, ok := Splice(path, source, target)
	if !ok {
		t.Fatal("expected splice to succeed")
	}
	if want := `D:\MyMods\test.lua`; got.String() != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSpliceUNCPathNotRemapped(t *testing.T) {
	path := New(`\\server\share\Mods\test.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	if _, ok := Splice(path, source, target); ok {
		t.Fatal("UNC path must not be remapped against a local source")
	}
}

func TestSpliceDifferentDriveNotRemapped(t *testing.T) {
	path := New(`E:\Game\Mods\test.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	if _, ok := Splice(path, source, target); ok {
		t.Fatal("path on a different drive must not be remapped")
	}
}

func TestSpliceSimilarPrefixNotRemapped(t *testing.T) {
	path := New(`C:\Game\ModsBackup\test.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	if _, ok := Splice(path, source, target); ok {
		t.Fatal("C:\\Game\\ModsBackup must not be remapped against source C:\\Game\\Mods")
	}
}

func TestSpliceRemainderComponentsMatchSourceTail(t *testing.T) {
	path := New(`C:\Game\Mods\SubDir\File.lua`)
	source := New(`C:\Game\Mods`)
	target := New(`D:\MyMods`)

	got, ok := Splice(path, source, target)
	if !ok {
		t.Fatal("expected splice to succeed")
	}
	// The remainder must preserve path's trailing components, case and
	// all, appended after the target.
	if want := `D:\MyMods\SubDir\File.lua`; got.String() != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
