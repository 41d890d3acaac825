// Package memmap provides a zero-copy, read-only cursor over a firmware
// memory-map buffer described by an abi.MemoryMap record.
package memmap

import (
	"unsafe"

	"nova/abi"
)

// View is a non-owning cursor over a stride-separated sequence of packed
// MemoryDescriptor entries. It never allocates and never mutates the
// underlying buffer.
type View struct {
	base      uintptr
	stride    uintptr
	count     uint32
}

// NewView wraps an abi.MemoryMap record for iteration. The caller must have
// already validated the record with abi.Validate; NewView performs no
// checks of its own.
func NewView(m *abi.MemoryMap) View {
	return View{
		base:   uintptr(m.DescriptorsPhys),
		stride: uintptr(m.EntrySize),
		count:  m.EntryCount,
	}
}

// at returns the descriptor at the given firmware-order index.
func (v View) at(index uint32) *abi.MemoryDescriptor {
	addr := v.base + uintptr(index)*v.stride
	return (*abi.MemoryDescriptor)(unsafe.Pointer(addr))
}

// Len returns the number of descriptors in the map.
func (v View) Len() uint32 {
	return v.count
}

// Visitor is invoked for each descriptor in firmware order. Returning false
// stops the iteration early.
type Visitor func(d *abi.MemoryDescriptor) bool

// Iterate walks every descriptor in firmware order, which is not guaranteed
// to be sorted by address.
func (v View) Iterate(visit Visitor) {
	for i := uint32(0); i < v.count; i++ {
		if !visit(v.at(i)) {
			return
		}
	}
}

// DescriptorRange returns the half-open byte range [start, end) covered by
// a descriptor, or false if start+pages*FrameSize overflows a uint64.
func DescriptorRange(d *abi.MemoryDescriptor) (start, end uint64, ok bool) {
	size := d.NumberOfPages * abi.FrameSize
	// Overflow in the multiplication itself is detectable by dividing back;
	// NumberOfPages realistically never approaches 2^52 but the spec asks
	// for an explicit overflow check rather than trusting firmware data.
	if d.NumberOfPages != 0 && size/d.NumberOfPages != abi.FrameSize {
		return 0, 0, false
	}
	end = d.PhysicalStart + size
	if end < d.PhysicalStart {
		return 0, 0, false
	}
	return d.PhysicalStart, end, true
}

// FindContaining returns the first descriptor (in firmware order) whose
// range contains addr, or nil if none does. Firmware ordering is not
// guaranteed sorted and duplicates are not expected; the first match wins.
func (v View) FindContaining(addr uint64) *abi.MemoryDescriptor {
	var found *abi.MemoryDescriptor
	v.Iterate(func(d *abi.MemoryDescriptor) bool {
		start, end, ok := DescriptorRange(d)
		if !ok {
			return true
		}
		if addr >= start && addr < end {
			found = d
			return false
		}
		return true
	})
	return found
}
