package pmm

import (
	"unsafe"

	"nova/abi"
	"nova/memmap"
)

// PhysicalAllocator is the runtime physical frame allocator: two
// caller-supplied slot arrays (free runs and reservations), sized once by
// PlanStorage and never reallocated. Slots are never reordered or
// compacted — "storage order" is slot index, and a cleared slot (the zero
// value) simply sits empty until reused. This mirrors the bring-up
// constraint that nothing here may touch the Go heap: callers typically
// back both slices with memory carved from physical frames via
// FreeSlotsAt/ReservedSlotsAt rather than make().
type PhysicalAllocator struct {
	free []PhysFrame
	resv []ReservedRegion
}

// PlanStorage computes the slot-array capacities NewPhysicalAllocator
// needs for a memory map with convCount conventional descriptors and
// resvCount reservations: free-slot capacity absorbs two splits per
// reservation plus every conventional region; reserved-slot capacity is
// the reservation count plus headroom for late discoveries.
func PlanStorage(convCount, resvCount int) (freeCap, resvCap int) {
	freeCap = 2 * (convCount + resvCount)
	if convCount > freeCap {
		freeCap = convCount
	}
	headroom := convCount
	if headroom < 4 {
		headroom = 4
	}
	resvCap = resvCount + headroom
	return
}

// FreeSlotsAt reinterprets a previously allocated, frame-aligned physical
// address as a zeroed []PhysFrame of the given capacity, for use as
// NewPhysicalAllocator's free-slot storage.
func FreeSlotsAt(addr uint64, capacity int) []PhysFrame {
	slots := unsafe.Slice((*PhysFrame)(unsafe.Pointer(uintptr(addr))), capacity)
	for i := range slots {
		slots[i] = PhysFrame{}
	}
	return slots
}

// ReservedSlotsAt reinterprets a previously allocated, frame-aligned
// physical address as a zeroed []ReservedRegion of the given capacity, for
// use as NewPhysicalAllocator's reserved-slot storage.
func ReservedSlotsAt(addr uint64, capacity int) []ReservedRegion {
	slots := unsafe.Slice((*ReservedRegion)(unsafe.Pointer(uintptr(addr))), capacity)
	for i := range slots {
		slots[i] = ReservedRegion{}
	}
	return slots
}

// NewPhysicalAllocator builds a PhysicalAllocator from a validated memory
// map and an ordered list of reservations, using freeStorage/resvStorage as
// backing slot arrays (sized via PlanStorage). It returns *EmptyError if no
// conventional memory is found, *InvalidDescriptorError if a conventional
// descriptor cannot be turned into a frame run, and *ReservationConflictError
// if applying a reservation fails.
func NewPhysicalAllocator(m *abi.MemoryMap, reservations []ReservedRegion, freeStorage []PhysFrame, resvStorage []ReservedRegion) (*PhysicalAllocator, error) {
	a := &PhysicalAllocator{free: freeStorage, resv: resvStorage}
	for i := range a.free {
		a.free[i] = PhysFrame{}
	}
	for i := range a.resv {
		a.resv[i] = ReservedRegion{}
	}

	view := memmap.NewView(m)
	convCount := 0
	var index uint32
	var constructErr error
	view.Iterate(func(d *abi.MemoryDescriptor) bool {
		defer func() { index++ }()
		if d.Type != abi.DescriptorConventional {
			return true
		}
		start, end, ok := memmap.DescriptorRange(d)
		if !ok || start >= end {
			constructErr = &InvalidDescriptorError{Index: index, Type: uint32(d.Type), Start: d.PhysicalStart, Cause: "range overflow"}
			return false
		}
		convCount++
		run := PhysFrame{Start: start, Count: (end - start) / FrameSize}
		if err := a.pushFree(run); err != nil {
			constructErr = &InvalidDescriptorError{Index: index, Type: uint32(d.Type), Start: d.PhysicalStart, Cause: err.Error()}
			return false
		}
		return true
	})
	if constructErr != nil {
		return nil, constructErr
	}
	if convCount == 0 {
		return nil, &EmptyError{}
	}

	for _, region := range reservations {
		if err := a.pushResv(region); err != nil {
			return nil, &ReservationConflictError{Start: region.Start, End: region.End, Cause: err.Error()}
		}
		if err := a.carve(region); err != nil {
			return nil, &ReservationConflictError{Start: region.Start, End: region.End, Cause: err.Error()}
		}
	}

	return a, nil
}

// pushFree writes run into the first empty free slot.
func (a *PhysicalAllocator) pushFree(run PhysFrame) error {
	for i := range a.free {
		if a.free[i].Count == 0 {
			a.free[i] = run
			return nil
		}
	}
	return &StorageExhaustedError{Capacity: len(a.free)}
}

// pushResv writes region into the first empty reservation slot.
func (a *PhysicalAllocator) pushResv(region ReservedRegion) error {
	for i := range a.resv {
		if a.resv[i].End == 0 {
			a.resv[i] = region
			return nil
		}
	}
	return &StorageExhaustedError{Capacity: len(a.resv)}
}

// carve removes region's byte range (rounded outward to frame boundaries)
// from the free list, clearing any slot it overlaps and re-inserting up to
// two surviving fragments per slot.
func (a *PhysicalAllocator) carve(region ReservedRegion) error {
	rStart := alignDown(region.Start)
	rEnd := alignUp(region.End)

	for i := range a.free {
		run := a.free[i]
		if run.Count == 0 {
			continue
		}
		runStart, runEnd := run.Start, run.End()
		if rEnd <= runStart || rStart >= runEnd {
			continue
		}
		a.free[i] = PhysFrame{}

		if runStart < rStart {
			head := PhysFrame{Start: runStart, Count: (rStart - runStart) / FrameSize}
			if head.Count > 0 {
				if err := a.pushFree(head); err != nil {
					return err
				}
			}
		}
		if rEnd < runEnd {
			tail := PhysFrame{Start: rEnd, Count: (runEnd - rEnd) / FrameSize}
			if tail.Count > 0 {
				if err := a.pushFree(tail); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Allocate returns a contiguous run of frames frames long, chosen by
// first-fit over storage order (the first slot encountered that is large
// enough). A zero-frame request is *UnsupportedFrameCountError; exhaustion
// is *OutOfMemoryError.
func (a *PhysicalAllocator) Allocate(frames uint64) (PhysFrame, error) {
	if frames == 0 {
		return InvalidFrame, &UnsupportedFrameCountError{Frames: frames}
	}
	for i := range a.free {
		run := a.free[i]
		if run.Count == 0 || run.Count < frames {
			continue
		}
		if run.Count == frames {
			a.free[i] = PhysFrame{}
			return run, nil
		}
		newStart := run.Start + frames*FrameSize
		if newStart < run.Start {
			return InvalidFrame, &RangeOverflowError{Start: run.Start, Size: frames * FrameSize}
		}
		a.free[i] = PhysFrame{Start: newStart, Count: run.Count - frames}
		return PhysFrame{Start: run.Start, Count: frames}, nil
	}
	return InvalidFrame, &OutOfMemoryError{}
}

// AllocateOrder requests 1<<order contiguous frames via Allocate.
func (a *PhysicalAllocator) AllocateOrder(order uint) (PhysFrame, error) {
	return a.Allocate(uint64(1) << order)
}

// Free inserts f back into the free list, coalescing it with every run it
// touches or overlaps. A zero-count frame is a silent no-op.
func (a *PhysicalAllocator) Free(f PhysFrame) error {
	if f.Count == 0 {
		return nil
	}
	newStart, newEnd := f.Start, f.End()

	for {
		changed := false
		for i := range a.free {
			run := a.free[i]
			if run.Count == 0 {
				continue
			}
			if run.Start <= newEnd && newStart <= run.End() {
				if run.Start < newStart {
					newStart = run.Start
				}
				if run.End() > newEnd {
					newEnd = run.End()
				}
				a.free[i] = PhysFrame{}
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return a.pushFree(PhysFrame{Start: newStart, Count: (newEnd - newStart) / FrameSize})
}

// Reserve appends region to the reserved list and subtracts its byte range
// from the free list. Rejects Start >= End or an exhausted reservation slot
// array.
func (a *PhysicalAllocator) Reserve(region ReservedRegion) error {
	if region.Start >= region.End {
		return &InvalidRegionError{Start: region.Start, End: region.End}
	}
	if err := a.pushResv(region); err != nil {
		return err
	}
	return a.carve(region)
}

// IterateFree visits every populated free slot in storage order. Iteration
// order carries no meaning across calls since allocation and coalescing
// can move a run to a different slot.
func (a *PhysicalAllocator) IterateFree(visit func(PhysFrame) bool) {
	for i := range a.free {
		if a.free[i].Count == 0 {
			continue
		}
		if !visit(a.free[i]) {
			return
		}
	}
}

// IterateReserved visits every populated reservation slot in storage order.
func (a *PhysicalAllocator) IterateReserved(visit func(ReservedRegion) bool) {
	for i := range a.resv {
		if a.resv[i].End == 0 {
			continue
		}
		if !visit(a.resv[i]) {
			return
		}
	}
}

// FreeBytes returns the total number of free bytes across all populated
// slots.
func (a *PhysicalAllocator) FreeBytes() uint64 {
	var total uint64
	a.IterateFree(func(f PhysFrame) bool {
		total += f.Bytes()
		return true
	})
	return total
}
