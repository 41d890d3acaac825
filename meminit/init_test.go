package meminit

import (
	"testing"
	"unsafe"

	"nova/abi"
	"nova/paging"
	"nova/pmm"
)

func init() {
	// The real CR3 write faults outside ring 0; tests only need to verify
	// that a hierarchy was built, not that it was installed.
	installPDTFn = func(*paging.Hierarchy) {}

	// Host tests stand in for physical memory using real Go heap addresses,
	// which routinely exceed the 512 GiB window paging.BuildTables enforces
	// for genuine identity-mapped physical memory. Swap in a stub that
	// still draws a frame from the allocator (exercising FrameSource) but
	// skips the address-range walk paging performs on real inputs.
	buildTablesFn = func(extra []paging.Range, src paging.FrameSource) (*paging.Hierarchy, error) {
		addr, err := src.AllocateFrame()
		if err != nil {
			return nil, err
		}
		return &paging.Hierarchy{PML4Addr: addr}, nil
	}
}

// fakeBoot assembles a BootAbi whose memory map, stack, and kernel-code
// descriptors are all backed by real Go memory, following the teacher's
// test idiom of treating host addresses as physical ones.
func fakeBoot(t *testing.T) (*abi.BootAbi, uint64, uint64) {
	t.Helper()

	// A large conventional region backs every carve the orchestrator makes
	// (map copy, bookkeeping storage).
	conv := make([]byte, 8*1024*1024)
	t.Cleanup(func() { _ = conv })
	convAddr := uint64(uintptr(unsafe.Pointer(&conv[0])))
	convAddr = (convAddr + 4095) &^ 4095 // frame-align for realism

	stack := make([]byte, 64*1024)
	t.Cleanup(func() { _ = stack })
	stackAddr := uint64(uintptr(unsafe.Pointer(&stack[0])))
	rsp := stackAddr + 100 // somewhere inside the descriptor

	code := make([]byte, 4096)
	t.Cleanup(func() { _ = code })
	codeAddr := uint64(uintptr(unsafe.Pointer(&code[0])))

	descs := []abi.MemoryDescriptor{
		{Type: abi.DescriptorConventional, PhysicalStart: convAddr, NumberOfPages: 2000},
		{Type: abi.DescriptorLoaderData, PhysicalStart: alignDown(stackAddr), NumberOfPages: 16},
		{Type: abi.DescriptorLoaderCode, PhysicalStart: alignDown(codeAddr), NumberOfPages: 1},
	}
	stride := uint32(unsafe.Sizeof(abi.MemoryDescriptor{}))
	buf := make([]abi.MemoryDescriptor, len(descs))
	copy(buf, descs)
	t.Cleanup(func() { _ = buf })

	boot := &abi.BootAbi{
		Version: abi.Version,
		Framebuffer: abi.Framebuffer{
			Base: 0xE0000000,
			Size: 1920 * 1080 * 4,
		},
		MemoryMap: abi.MemoryMap{
			DescriptorsPhys: uint64(uintptr(unsafe.Pointer(&buf[0]))),
			MapSize:         uint64(stride) * uint64(len(descs)),
			EntrySize:       stride,
			EntryVersion:    1,
			EntryCount:      uint32(len(descs)),
		},
	}
	return boot, rsp, codeAddr
}

func alignDown(addr uint64) uint64 { return addr &^ 4095 }

func TestInitialize_HappyPath(t *testing.T) {
	boot, rsp, codeAddr := fakeBoot(t)

	result, err := Initialize(boot, rsp, codeAddr, nil, nil)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if result.Allocator == nil {
		t.Fatalf("expected a non-nil allocator")
	}
	if result.Hierarchy == nil {
		t.Fatalf("expected a non-nil page-table hierarchy")
	}
	if result.MemoryMap.DescriptorsPhys == boot.MemoryMap.DescriptorsPhys {
		t.Fatalf("expected the copied map to live at a different address than the firmware original")
	}
}

func TestInitialize_RejectsEmptyConventionalMemory(t *testing.T) {
	boot, rsp, codeAddr := fakeBoot(t)
	// Replace every descriptor's type with something non-conventional.
	view := unsafe.Slice((*abi.MemoryDescriptor)(unsafe.Pointer(uintptr(boot.MemoryMap.DescriptorsPhys))), boot.MemoryMap.EntryCount)
	for i := range view {
		if view[i].Type == abi.DescriptorConventional {
			view[i].Type = abi.DescriptorReserved
		}
	}

	_, err := Initialize(boot, rsp, codeAddr, nil, nil)
	if _, ok := err.(*NoUsableMemoryError); !ok {
		t.Fatalf("got %v (%T), want *NoUsableMemoryError", err, err)
	}
}

func TestInitialize_ReportsMissingStackDescriptor(t *testing.T) {
	boot, _, codeAddr := fakeBoot(t)
	unrelated := uint64(0xFEEDFACE00)

	_, err := Initialize(boot, unrelated, codeAddr, nil, nil)
	if _, ok := err.(*StackDescriptorMissingError); !ok {
		t.Fatalf("got %v (%T), want *StackDescriptorMissingError", err, err)
	}
}

func TestInitialize_WarnsOnMissingKernelCodeDescriptor(t *testing.T) {
	boot, rsp, _ := fakeBoot(t)
	var warned []string
	logger := loggerFunc(func(format string, args ...interface{}) {
		warned = append(warned, format)
	})

	_, err := Initialize(boot, rsp, 0xDEADBEEF00, nil, logger)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(warned) == 0 {
		t.Fatalf("expected a warning about the missing kernel code descriptor")
	}
}

type loggerFunc func(format string, args ...interface{})

func (f loggerFunc) Warnf(format string, args ...interface{}) { f(format, args...) }

func TestInitialize_UsesSuppliedReservations(t *testing.T) {
	boot, rsp, codeAddr := fakeBoot(t)
	var resv pmm.EarlyReservations
	// An unrelated reservation elsewhere in the address space must not
	// interfere with a successful bring-up.
	if err := resv.Push(pmm.ReservedRegion{Start: 0x8000_0000_0000, End: 0x8000_0000_1000}); err != nil {
		t.Fatalf("push: %v", err)
	}

	if _, err := Initialize(boot, rsp, codeAddr, &resv, nil); err != nil {
		t.Fatalf("Initialize with unrelated reservation should still succeed: %v", err)
	}
}
