package abi

import "fmt"

// VersionMismatchError is returned when a BootAbi's Version does not match
// the compiled-in constant.
type VersionMismatchError struct {
	Expected uint32
	Found    uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("boot abi version mismatch: expected %d, found %d", e.Expected, e.Found)
}

// FramebufferInvalidError is returned when the framebuffer record fails a
// validation check. Reason is a short, stable tag describing which check
// failed (e.g. "base address is null") — it exists so tests and postmortem
// tooling can identify the failing check without parsing Error().
type FramebufferInvalidError struct {
	Reason string
}

func (e *FramebufferInvalidError) Error() string {
	return fmt.Sprintf("framebuffer invalid: %s", e.Reason)
}

// MemoryMapInvalidError is returned when the memory-map record fails a
// validation check.
type MemoryMapInvalidError struct {
	Reason string
}

func (e *MemoryMapInvalidError) Error() string {
	return fmt.Sprintf("memory map invalid: %s", e.Reason)
}
