// Package meminit sequences the bring-up memory subsystems into a single
// orchestrated pass: copy the firmware memory map into kernel-owned
// storage, stage the byte ranges that must survive the upcoming page-table
// switch, carve the runtime allocator's own bookkeeping storage, build the
// allocator, and install paging. It runs exactly once per boot.
package meminit

import (
	"unsafe"

	"nova/abi"
	"nova/memmap"
	"nova/paging"
	"nova/pmm"
)

// maxIdentityRanges bounds the fixed-capacity staging buffer for
// must-preserve byte ranges (memory-map copy, stack, kernel code,
// framebuffer, bookkeeping storage).
const maxIdentityRanges = 8

// installPDTFn is used by tests to override the real CR3 write, which
// faults outside ring 0.
var installPDTFn = paging.Install

// SetInstallHook overrides the page-table installation step (the real CR3
// write). Production code never calls this; cmd/bringupsim does, since it
// runs the full sequence as an ordinary host process that cannot issue a
// privileged CR3 load. Passing nil restores the real installer.
func SetInstallHook(fn func(*paging.Hierarchy)) {
	if fn == nil {
		fn = paging.Install
	}
	installPDTFn = fn
}

// buildTablesFn is used by tests to override page-table construction.
// Production identity ranges always fall within the 512 GiB window
// BuildTables enforces, but a host test standing in for physical memory
// with real Go heap addresses can exceed it; overriding this hook lets such
// tests exercise the rest of the orchestration without that mismatch.
var buildTablesFn = paging.BuildTables

// Logger receives non-fatal diagnostics emitted during orchestration (only
// the kernel-code-descriptor lookup miss, currently). A nil Logger passed
// to Initialize is treated as a no-op sink.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Result is the durable state memory init hands off to the rest of the
// kernel: the authoritative (copied) memory map, the runtime allocator, and
// the now-installed page-table hierarchy.
type Result struct {
	MemoryMap abi.MemoryMap
	Allocator *pmm.PhysicalAllocator
	Hierarchy *paging.Hierarchy
}

// identityRanges is the fixed-capacity, dedup-on-insert staging buffer for
// §4.7 step 5.
type identityRanges struct {
	ranges [maxIdentityRanges]pmm.ReservedRegion
	len    int
}

func (r *identityRanges) push(region pmm.ReservedRegion) error {
	for i := 0; i < r.len; i++ {
		if r.ranges[i] == region {
			return nil
		}
	}
	if r.len >= len(r.ranges) {
		return &IdentityRangeOverflowError{Start: region.Start, End: region.End}
	}
	r.ranges[r.len] = region
	r.len++
	return nil
}

func (r *identityRanges) slice() []pmm.ReservedRegion { return r.ranges[:r.len] }

// Initialize runs the full bring-up sequence described above. rsp is the
// current stack pointer (the caller typically takes the address of a local
// variable) and kernelCodeAddr is the address of a known kernel code
// symbol; both are passed in explicitly rather than read by this package so
// that Initialize stays host-testable. resv supplies the early reservations
// consulted while bump-allocating (pass pmm.DefaultReservations() in
// production; nil is treated as an empty, local set). log may be nil.
func Initialize(boot *abi.BootAbi, rsp, kernelCodeAddr uint64, resv *pmm.EarlyReservations, log Logger) (*Result, error) {
	if log == nil {
		log = nopLogger{}
	}
	if resv == nil {
		resv = &pmm.EarlyReservations{}
	}

	cursor := pmm.NewEarlyFrameCursor(&boot.MemoryMap, resv)

	// Step 1: at least one usable frame must exist.
	if _, err := cursor.Next(); err != nil {
		return nil, &NoUsableMemoryError{}
	}

	// Step 2: copy the firmware memory map into kernel-owned frames.
	mapFrames := ceilDiv(boot.MemoryMap.MapSize, pmm.FrameSize)
	mapRun, err := cursor.AllocateContiguous(mapFrames)
	if err != nil {
		return nil, wrapCursorErr(err)
	}
	pmm.CopyPhys(mapRun.Start, boot.MemoryMap.DescriptorsPhys, boot.MemoryMap.MapSize)

	newMap := abi.MemoryMap{
		DescriptorsPhys: mapRun.Start,
		MapSize:         boot.MemoryMap.MapSize,
		EntrySize:       boot.MemoryMap.EntrySize,
		EntryVersion:    boot.MemoryMap.EntryVersion,
		EntryCount:      boot.MemoryMap.EntryCount,
	}
	view := memmap.NewView(&newMap)

	if view.Len() == 0 {
		return nil, &EmptyMemoryMapError{}
	}

	// Step 3: locate the descriptor containing the stack pointer.
	stackDesc := view.FindContaining(rsp)
	if stackDesc == nil {
		return nil, &StackDescriptorMissingError{RSP: rsp}
	}
	stackStart, stackEnd, ok := memmap.DescriptorRange(stackDesc)
	if !ok {
		return nil, &StackRangeOverflowError{Type: uint32(stackDesc.Type)}
	}

	// Step 4: locate the descriptor containing the kernel code address;
	// a miss or overflow is a warning, not a fatal error.
	var codeRange *pmm.ReservedRegion
	if codeDesc := view.FindContaining(kernelCodeAddr); codeDesc != nil {
		if cs, ce, ok := memmap.DescriptorRange(codeDesc); ok {
			codeRange = &pmm.ReservedRegion{Start: cs, End: ce}
		} else {
			log.Warnf("meminit: kernel code descriptor (type %d) range overflows", codeDesc.Type)
		}
	} else {
		log.Warnf("meminit: no descriptor contains kernel code address %#x", kernelCodeAddr)
	}

	// Step 5: stage the must-preserve identity ranges.
	var ranges identityRanges
	if err := ranges.push(pmm.ReservedRegion{Start: mapRun.Start, End: mapRun.End()}); err != nil {
		return nil, err
	}
	if err := ranges.push(pmm.ReservedRegion{Start: stackStart, End: stackEnd}); err != nil {
		return nil, err
	}
	if codeRange != nil {
		if err := ranges.push(*codeRange); err != nil {
			return nil, err
		}
	}
	if err := ranges.push(pmm.ReservedRegion{Start: boot.Framebuffer.Base, End: boot.Framebuffer.End()}); err != nil {
		return nil, err
	}

	// Step 6: plan the allocator's bookkeeping storage.
	convCount := 0
	view.Iterate(func(d *abi.MemoryDescriptor) bool {
		if d.Type == abi.DescriptorConventional {
			convCount++
		}
		return true
	})
	freeCap, resvCap := pmm.PlanStorage(convCount, ranges.len+2)

	// Step 7: carve the bookkeeping slot arrays and reserve their own
	// byte ranges so the allocator never hands them back out.
	freeSize := uint64(freeCap) * uint64(unsafe.Sizeof(pmm.PhysFrame{}))
	freeRun, err := cursor.AllocateContiguous(ceilDiv(freeSize, pmm.FrameSize))
	if err != nil {
		return nil, wrapCursorErr(err)
	}
	if err := ranges.push(pmm.ReservedRegion{Start: freeRun.Start, End: freeRun.End()}); err != nil {
		return nil, err
	}

	resvSize := uint64(resvCap) * uint64(unsafe.Sizeof(pmm.ReservedRegion{}))
	resvRun, err := cursor.AllocateContiguous(ceilDiv(resvSize, pmm.FrameSize))
	if err != nil {
		return nil, wrapCursorErr(err)
	}
	if err := ranges.push(pmm.ReservedRegion{Start: resvRun.Start, End: resvRun.End()}); err != nil {
		return nil, err
	}

	freeSlots := pmm.FreeSlotsAt(freeRun.Start, freeCap)
	resvSlots := pmm.ReservedSlotsAt(resvRun.Start, resvCap)

	// Step 8: initialize the runtime allocator.
	allocator, err := pmm.NewPhysicalAllocator(&newMap, ranges.slice(), freeSlots, resvSlots)
	if err != nil {
		return nil, err
	}

	// Step 9: install paging, sourcing intermediate-table frames from the
	// allocator itself. The conversion to paging.Range is staged into a
	// fixed-capacity array, not an append-grown slice: the allocator isn't
	// installed as the Go runtime's own memory source until after
	// Initialize returns (see kernel/goruntime.SetAllocator), so nothing
	// in this function may touch the heap.
	var extraArr [maxIdentityRanges]paging.Range
	for i, r := range ranges.slice() {
		extraArr[i] = paging.Range{Start: r.Start, End: r.End}
	}
	extra := extraArr[:ranges.len]
	hierarchy, err := buildTablesFn(extra, allocatorFrameSource{allocator})
	if err != nil {
		return nil, &PagingError{Cause: err}
	}
	installPDTFn(hierarchy)

	return &Result{MemoryMap: newMap, Allocator: allocator, Hierarchy: hierarchy}, nil
}

// allocatorFrameSource adapts *pmm.PhysicalAllocator to paging.FrameSource.
type allocatorFrameSource struct{ a *pmm.PhysicalAllocator }

func (s allocatorFrameSource) AllocateFrame() (uint64, error) {
	f, err := s.a.Allocate(1)
	if err != nil {
		return 0, err
	}
	return f.Start, nil
}

// ceilDiv returns ceil(n/d) for positive d.
func ceilDiv(n, d uint64) uint64 { return (n + d - 1) / d }

// wrapCursorErr tags an EarlyFrameCursor failure with the meminit error kind
// matching its cause.
func wrapCursorErr(err error) error {
	switch e := err.(type) {
	case *pmm.OutOfFramesError:
		return &OutOfFramesError{Cause: e}
	case *pmm.NonContiguousError:
		return &NonContiguousError{Cause: e}
	case *pmm.InvalidRequestError:
		return &TooLargeError{Frames: 0}
	default:
		return err
	}
}
