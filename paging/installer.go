package paging

import (
	"unsafe"

	"nova/kernel/cpu"
)

// hugePageSize is the region covered by a single PD-level leaf entry.
const hugePageSize = 2 * 1024 * 1024

// LowIdentityLimit is the fixed low window always identity-mapped
// regardless of what extra ranges the caller asks for.
const LowIdentityLimit = 1 << 30 // 1 GiB

// pml4Window is the span covered by PML4[0], the only PML4 entry this
// installer ever populates. Any address at or beyond it is rejected.
const pml4Window = 1 << 39 // 512 GiB

// FrameSource supplies the physical frames BuildTables consumes for new
// page-table levels. The frame's physical address must be directly
// dereferenceable at call time (true before and during table construction,
// since construction runs under the bootloader's own identity map).
type FrameSource interface {
	AllocateFrame() (uint64, error)
}

// Range is a half-open byte interval [Start, End) to be identity-mapped in
// addition to the fixed low window.
type Range struct {
	Start, End uint64
}

// tableAt reinterprets a physical frame address as a *Table. Valid only
// while running under an identity (or otherwise direct) mapping of addr.
func tableAt(addr uint64) *Table {
	return (*Table)(unsafe.Pointer(uintptr(addr)))
}

// Hierarchy is a fully constructed, not-yet-installed page-table tree ready
// to be handed to Install.
type Hierarchy struct {
	PML4Addr uint64
}

// BuildTables constructs a 4-level identity-mapped hierarchy covering
// [0, LowIdentityLimit) plus every range in extra, using 2 MiB huge pages
// at the PD level. Each range's endpoints are aligned outward to 2 MiB
// before mapping. Frames for the PML4, PDPT, and PD levels are drawn from
// src on demand; an existing PDPT/PD is reused whenever two ranges share
// one. Only PML4[0] is ever populated, so any address at or beyond 512 GiB
// fails with *UnsupportedAddressError.
func BuildTables(extra []Range, src FrameSource) (*Hierarchy, error) {
	pml4Addr, err := src.AllocateFrame()
	if err != nil {
		return nil, &OutOfFramesError{Cause: err}
	}
	pml4 := tableAt(pml4Addr)
	pml4.Clear()
	h := &Hierarchy{PML4Addr: pml4Addr}

	if err := mapRange(pml4, Range{0, LowIdentityLimit}, src); err != nil {
		return nil, err
	}
	for _, r := range extra {
		if err := mapRange(pml4, r, src); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// mapRange aligns r outward to 2 MiB boundaries and writes a PD entry for
// every huge page it spans.
func mapRange(pml4 *Table, r Range, src FrameSource) error {
	if r.End <= r.Start {
		return nil
	}
	start := alignDown2M(r.Start)
	end := alignUp2M(r.End)
	if end < r.End {
		return &AddressOverflowError{Start: r.Start, Size: r.End - r.Start}
	}
	if end > pml4Window {
		return &UnsupportedAddressError{Addr: r.End}
	}

	for addr := start; addr < end; addr += hugePageSize {
		pdAddr, err := ensurePD(pml4, addr, src)
		if err != nil {
			return err
		}
		_, _, pdIdx, _ := Index(addr)
		pd := tableAt(pdAddr)
		pd.Set(pdIdx, addr, FlagPresent|FlagWritable|FlagHugePage)
	}
	return nil
}

func alignDown2M(addr uint64) uint64 { return addr &^ (hugePageSize - 1) }

func alignUp2M(addr uint64) uint64 {
	aligned := (addr + hugePageSize - 1) &^ (hugePageSize - 1)
	if aligned < addr {
		return 0 // overflow; caller compares against the un-aligned value
	}
	return aligned
}

// ensurePD walks (allocating as needed) the PDPT level to return the
// physical address of the PD table that owns virtAddr's 2 MiB region.
func ensurePD(pml4 *Table, virtAddr uint64, src FrameSource) (uint64, error) {
	pml4Idx, pdptIdx, _, _ := Index(virtAddr)
	if pml4Idx != 0 {
		return 0, &UnsupportedAddressError{Addr: virtAddr}
	}

	var pdptAddr uint64
	if pml4.Present(pml4Idx) {
		pdptAddr = pml4.Address(pml4Idx)
	} else {
		addr, err := src.AllocateFrame()
		if err != nil {
			return 0, &OutOfFramesError{Cause: err}
		}
		tableAt(addr).Clear()
		pml4.Set(pml4Idx, addr, FlagPresent|FlagWritable)
		pdptAddr = addr
	}

	pdpt := tableAt(pdptAddr)
	if pdpt.Present(pdptIdx) {
		return pdpt.Address(pdptIdx), nil
	}

	pdAddr, err := src.AllocateFrame()
	if err != nil {
		return 0, &OutOfFramesError{Cause: err}
	}
	tableAt(pdAddr).Clear()
	pdpt.Set(pdptIdx, pdAddr, FlagPresent|FlagWritable)
	return pdAddr, nil
}

// Install activates h by loading CR3 with its PML4 physical address. A
// compiler fence follows the load so the compiler cannot reorder subsequent
// memory accesses to before the switch; the CPU itself serializes on CR3
// writes.
func Install(h *Hierarchy) {
	cpu.SwitchPDT(h.PML4Addr)
	cpu.CompilerFence()
}
