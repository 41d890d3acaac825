package pmm

import (
	"nova/abi"
	"nova/memmap"
)

// EarlyFrameCursor is a bump allocator over the conventional-memory
// descriptors of a firmware memory map. It never frees and never
// backtracks: once a frame is handed out, the cursor has moved past it for
// good. This mirrors bootMemAllocator in the teacher's mem/pmm/allocator
// package, generalized to walk an abi memory map instead of a multiboot one
// and to consult an EarlyReservations list instead of a single kernel
// extent.
//
// The zero value is not ready for use; construct with NewEarlyFrameCursor.
type EarlyFrameCursor struct {
	view  memmap.View
	resv  *EarlyReservations
	index uint32 // firmware-order index of the descriptor under the cursor
	next  uint64 // next candidate physical address inside that descriptor
}

// NewEarlyFrameCursor builds a cursor over m's conventional-memory regions,
// skipping any bytes covered by resv. resv may be nil, meaning no
// reservations are in effect.
func NewEarlyFrameCursor(m *abi.MemoryMap, resv *EarlyReservations) *EarlyFrameCursor {
	c := &EarlyFrameCursor{view: memmap.NewView(m), resv: resv}
	c.seekToUsable()
	return c
}

// seekToUsable advances index/next until it points at frame-aligned,
// reservation-free space inside a conventional descriptor, or runs off the
// end of the map (index == view.Len()).
func (c *EarlyFrameCursor) seekToUsable() {
	for c.index < c.view.Len() {
		d := c.descriptorAt(c.index)
		start, end, ok := memmap.DescriptorRange(d)
		if !ok || d.Type != abi.DescriptorConventional {
			c.index++
			c.next = 0
			continue
		}
		if c.next < start {
			c.next = alignUp(start)
		}
		if c.next < FrameSize {
			// The zero page is never yielded even if a conventional
			// descriptor claims to start at or near address 0.
			c.next = FrameSize
		}
		if c.next >= end {
			c.index++
			c.next = 0
			continue
		}
		if c.resv != nil {
			if region, hit := c.resv.Find(c.next); hit {
				c.next = alignUp(region.End)
				continue
			}
		}
		if c.next >= end {
			c.index++
			c.next = 0
			continue
		}
		return
	}
}

// descriptorAt re-walks the view to find the descriptor at firmware index i.
// The view offers no direct indexing API beyond Iterate, so the cursor
// tracks the descriptor via a short linear scan; memory maps handed to the
// bring-up path are small (tens of entries), so this stays cheap.
func (c *EarlyFrameCursor) descriptorAt(i uint32) *abi.MemoryDescriptor {
	var found *abi.MemoryDescriptor
	var cur uint32
	c.view.Iterate(func(d *abi.MemoryDescriptor) bool {
		if cur == i {
			found = d
			return false
		}
		cur++
		return true
	})
	return found
}

// Next yields the next single usable frame, or an *OutOfFramesError once the
// memory map is exhausted.
func (c *EarlyFrameCursor) Next() (PhysFrame, error) {
	if c.index >= c.view.Len() {
		return InvalidFrame, &OutOfFramesError{}
	}
	frame := PhysFrame{Start: c.next, Count: 1}
	c.next += FrameSize
	c.seekToUsable()
	return frame, nil
}

// AllocateContiguous yields count physically contiguous frames. Frames are
// pulled one at a time and accepted into the run only while addresses
// ascend by exactly FrameSize; a gap restarts the run from the frame that
// broke contiguity rather than failing outright. *InvalidRequestError is
// returned for count == 0. On exhaustion, *NonContiguousError is returned
// if at least one gap was observed, otherwise *OutOfFramesError.
func (c *EarlyFrameCursor) AllocateContiguous(count uint64) (PhysFrame, error) {
	if count == 0 {
		return InvalidFrame, &InvalidRequestError{}
	}

	first, err := c.Next()
	if err != nil {
		return InvalidFrame, err
	}
	runStart := first.Start
	runCount := uint64(1)
	var lastGap *NonContiguousError

	for runCount < count {
		expected := runStart + runCount*FrameSize
		next, err := c.Next()
		if err != nil {
			if lastGap != nil {
				return InvalidFrame, lastGap
			}
			return InvalidFrame, err
		}
		if next.Start != expected {
			lastGap = &NonContiguousError{Expected: expected, Found: next.Start}
			runStart = next.Start
			runCount = 1
			continue
		}
		runCount++
	}
	return PhysFrame{Start: runStart, Count: runCount}, nil
}
