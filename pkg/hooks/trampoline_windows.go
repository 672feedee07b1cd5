//go:build windows

package hooks

import (
	"encoding/binary"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"

	"golang.org/x/sys/windows"
)

// stubLen is the number of bytes overwritten at the head of a hooked
// function. It must be large enough to hold an absolute jump (12 bytes
// on amd64: a 10-byte "mov rax, imm64" followed by a 2-byte "jmp rax")
// with room to spare; the spare bytes are padded with single-byte NOPs
// so that any instruction boundary landing inside the padding still
// decodes to something harmless if control ever resumes there.
//
// This is the one place in the shim that does not lean on a retrieved
// third-party library: no inline-hooking package turned up anywhere in
// the example pack, and machine-code patching is inescapably
// architecture-specific, unsafe code regardless of which library (if
// any) wraps it. See DESIGN.md for the full justification.
const stubLen = 16

// jumpLen is the number of bytes an absolute jump actually occupies;
// the remaining stubLen-jumpLen bytes of a patched prologue are NOPs.
const jumpLen = 12

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)

// Hook represents one installed detour: a target function whose
// prologue has been overwritten with a jump to a detour, plus a
// trampoline that still runs the original prologue followed by a jump
// back into the target past the patched region — the mechanism that
// lets a detour "chain to the original function" (spec.md §4.F) without
// recursing back into itself.
type Hook struct {
	name       string
	target     uintptr
	trampoline uintptr
	saved      []byte
}

// Name returns the hooked function's name, for logging.
func (h *Hook) Name() string { return h.name }

// CallOriginal invokes this hook's trampoline with the given arguments,
// using the Windows x64 calling convention (the same one syscall.SyscallN
// uses for "system"-convention calls). Detour bodies use this instead of
// calling the target function directly, which would simply re-enter the
// detour and recurse forever (spec.md §5's re-entrancy hazard).
func (h *Hook) CallOriginal(args ...uintptr) (r1, r2 uintptr, lastErr syscall.Errno) {
	return syscall.SyscallN(h.trampoline, args...)
}

// Original returns the address of this hook's trampoline: a small block
// of executable memory that runs the original function's overwritten
// prologue bytes and then jumps back into the original function past
// the patch. Call it the same way you would call the original function,
// via CallOriginal.
func (h *Hook) Original() uintptr { return h.trampoline }

// mu serializes hook installation. Installation itself only ever
// happens once, during shim initialization before any hook can be hit
// concurrently, but the lock keeps VirtualProtect critical sections from
// overlapping if Install is ever called from more than one goroutine.
var mu sync.Mutex

// Install patches proc's prologue to jump to detour, returning a Hook
// whose Original method yields a trampoline for chaining to the real
// implementation. The hook is installed but does not need a separate
// "enable" step: patching is atomic enough, for this shim's purposes,
// the moment the jump is written (spec.md's re-entrancy note already
// assumes no partial-patch window is observable at the instruction
// granularity this shim cares about).
func Install(dll *windows.LazyDLL, procName string, detour uintptr) (*Hook, error) {
	mu.Lock()
	defer mu.Unlock()

	proc := dll.NewProc(procName)
	if err := proc.Find(); err != nil {
		return nil, errors.Wrapf(err, "unable to locate %s", procName)
	}
	target := proc.Addr()

	saved := make([]byte, stubLen)
	copy(saved, unsafe.Slice((*byte)(unsafe.Pointer(target)), stubLen))

	trampoline, err := buildTrampoline(saved, target+stubLen)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build trampoline for %s", procName)
	}

	if err := patchJump(target, detour); err != nil {
		return nil, errors.Wrapf(err, "unable to patch prologue of %s", procName)
	}

	return &Hook{
		name:       procName,
		target:     target,
		trampoline: trampoline,
		saved:      saved,
	}, nil
}

// buildTrampoline allocates an executable page containing the saved
// original prologue bytes followed by an absolute jump back to
// resumeAt (the original function past its patched prologue).
func buildTrampoline(saved []byte, resumeAt uintptr) (uintptr, error) {
	page, err := windows.VirtualAlloc(
		0,
		uintptr(len(saved)+jumpLen),
		windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_EXECUTE_READWRITE,
	)
	if err != nil {
		return 0, fmt.Errorf("VirtualAlloc failed: %w", err)
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(page)), len(saved)+jumpLen)
	copy(buf, saved)
	copy(buf[len(saved):], absoluteJump(resumeAt))

	flushInstructionCache(page, uintptr(len(buf)))

	return page, nil
}

// patchJump overwrites target's prologue (stubLen bytes) with an
// absolute jump to detour, padding any unused bytes with single-byte
// NOPs (0x90).
func patchJump(target, detour uintptr) error {
	var oldProtect uint32
	if err := windows.VirtualProtect(target, stubLen, windows.PAGE_EXECUTE_READWRITE, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect (make writable) failed: %w", err)
	}

	patch := make([]byte, stubLen)
	copy(patch, absoluteJump(detour))
	for i := jumpLen; i < stubLen; i++ {
		patch[i] = 0x90
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(target)), stubLen)
	copy(dst, patch)

	var discard uint32
	if err := windows.VirtualProtect(target, stubLen, oldProtect, &discard); err != nil {
		return fmt.Errorf("VirtualProtect (restore) failed: %w", err)
	}

	flushInstructionCache(target, stubLen)
	return nil
}

// absoluteJump encodes "mov rax, addr; jmp rax" (amd64), the smallest
// position-independent way to reach an arbitrary 64-bit address from a
// patched prologue.
func absoluteJump(addr uintptr) []byte {
	buf := make([]byte, jumpLen)
	buf[0] = 0x48 // REX.W
	buf[1] = 0xB8 // MOV RAX, imm64
	binary.LittleEndian.PutUint64(buf[2:10], uint64(addr))
	buf[10] = 0xFF // JMP
	buf[11] = 0xE0 // /4 (RAX)
	return buf
}

// flushInstructionCache asks the CPU to discard any stale instruction
// cache entries for the patched range. This is a no-op on the x86/x64
// coherent-cache model in practice, but it is required by the Win32
// contract whenever code is modified at runtime, so this shim calls it
// rather than relying on undefined behavior.
func flushInstructionCache(addr, size uintptr) {
	procFlushInstructionCache.Call(
		uintptr(windows.CurrentProcess()),
		addr,
		size,
	)
}
