//go:build !windows

// Command shimloader only has anything to do on Windows, the only
// platform Unreal Engine's UE4SS loader runs on. This stub keeps the
// package buildable elsewhere (for `go vet`/editor tooling) without
// pulling in any Windows-specific code.
package main

func main() {}
