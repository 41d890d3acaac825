// Package pmm implements physical frame management for the bring-up path:
// a bump-style EarlyFrameCursor used before any runtime allocator exists,
// and a coalescing free-list PhysicalAllocator used thereafter. Neither
// type allocates from the Go heap.
package pmm

import "math"

// FrameSize is the architectural page size (4 KiB on x86_64).
const FrameSize = 4096

// PhysFrame describes a contiguous run of physical frames.
type PhysFrame struct {
	// Start is the physical address of the first frame in the run.
	// Invariant: Start is 4 KiB aligned.
	Start uint64
	// Count is the number of frames in the run. Invariant: Count >= 1.
	Count uint64
}

// InvalidFrame is returned by allocators when they cannot satisfy a
// request; it is never a legitimate Start value because it overflows any
// real physical address space.
var InvalidFrame = PhysFrame{Start: math.MaxUint64, Count: 0}

// End returns the byte address one past the last byte of the run.
func (f PhysFrame) End() uint64 {
	return f.Start + f.Count*FrameSize
}

// Bytes returns the size of the run in bytes.
func (f PhysFrame) Bytes() uint64 {
	return f.Count * FrameSize
}

// Overlaps reports whether f and o share any byte.
func (f PhysFrame) Overlaps(o PhysFrame) bool {
	return f.Start < o.End() && o.Start < f.End()
}

// Adjoins reports whether f and o are adjacent or overlapping byte ranges
// that could be merged into a single run.
func (f PhysFrame) Adjoins(o PhysFrame) bool {
	return f.Start <= o.End() && o.Start <= f.End()
}

// alignUp rounds addr up to the next multiple of FrameSize.
func alignUp(addr uint64) uint64 {
	return (addr + FrameSize - 1) &^ (FrameSize - 1)
}

// alignDown rounds addr down to the previous multiple of FrameSize.
func alignDown(addr uint64) uint64 {
	return addr &^ (FrameSize - 1)
}
