// Command bringupsim runs the full memory-init sequence against a
// synthetic firmware memory map on the host, so the orchestration in
// meminit can be iterated on locally and in CI without real hardware.
//
// Host Go memory ordinarily lives far above the 512 GiB window
// paging.BuildTables enforces for identity-mapped physical memory, so this
// tool reserves its synthetic regions at fixed low addresses via mmap
// (mmap_linux_amd64.go) instead of letting the allocator place them.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	humanize "github.com/dustin/go-humanize"
	multierror "github.com/hashicorp/go-multierror"

	"nova/abi"
	"nova/meminit"
	"nova/paging"
	"nova/pmm"
)

const (
	convBase  = uintptr(0x2000_0000)
	convSize  = 16 * 1024 * 1024
	stackBase = uintptr(0x2100_0000)
	stackSize = 64 * 1024
	codeBase  = uintptr(0x2110_0000)
	codeSize  = 4096
	descBase  = uintptr(0x2200_0000)
	descSize  = 4096
	fbBase    = uint64(0x3000_0000)
	fbSize    = uint64(800 * 600 * 4)
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[bringupsim] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	verbose := flag.Bool("v", false, "print the constructed BootAbi before running")
	flag.Parse()

	// This process cannot issue a privileged CR3 load; skip the real
	// installer and just verify the hierarchy was built.
	meminit.SetInstallHook(func(*paging.Hierarchy) {})

	boot, err := buildSyntheticAbi()
	if err != nil {
		exit(err)
	}

	if *verbose {
		fmt.Printf("synthetic BootAbi: %+v\n", boot)
	}

	if err := abi.Validate(boot); err != nil {
		exit(fmt.Errorf("synthetic BootAbi failed validation: %w", err))
	}

	// This goroutine's real stack lives in host memory outside the synthetic
	// map, so an address in the middle of the synthetic stack descriptor
	// stands in for the current stack pointer.
	rsp := uint64(stackBase) + stackSize/2
	// The synthetic code descriptor covers codeBase; any address in it
	// will do as the "known kernel code symbol".
	kernelCodeAddr := uint64(codeBase)

	result, err := meminit.Initialize(boot, rsp, kernelCodeAddr, &pmm.EarlyReservations{}, nil)
	if err != nil {
		exit(fmt.Errorf("memory init failed: %w", err))
	}

	if errs := sanityCheck(result); errs != nil {
		exit(errs)
	}

	fmt.Printf("bring-up OK: %s free across tracked regions, page tables rooted at %#x\n",
		humanize.Bytes(result.Allocator.FreeBytes()), result.Hierarchy.PML4Addr)
}

// buildSyntheticAbi reserves the fixed low-address regions and assembles a
// BootAbi whose memory map describes them.
func buildSyntheticAbi() (*abi.BootAbi, error) {
	conv, err := mmapFixed(convBase, convSize)
	if err != nil {
		return nil, fmt.Errorf("reserving conventional region: %w", err)
	}
	if _, err := mmapFixed(stackBase, stackSize); err != nil {
		return nil, fmt.Errorf("reserving stack region: %w", err)
	}
	if _, err := mmapFixed(codeBase, codeSize); err != nil {
		return nil, fmt.Errorf("reserving code region: %w", err)
	}
	descBuf, err := mmapFixed(descBase, descSize)
	if err != nil {
		return nil, fmt.Errorf("reserving descriptor buffer: %w", err)
	}
	_ = conv

	descriptors := unsafe.Slice((*abi.MemoryDescriptor)(unsafe.Pointer(&descBuf[0])), 3)
	descriptors[0] = abi.MemoryDescriptor{Type: abi.DescriptorConventional, PhysicalStart: uint64(convBase), NumberOfPages: convSize / abi.FrameSize}
	descriptors[1] = abi.MemoryDescriptor{Type: abi.DescriptorLoaderData, PhysicalStart: uint64(stackBase), NumberOfPages: stackSize / abi.FrameSize}
	descriptors[2] = abi.MemoryDescriptor{Type: abi.DescriptorLoaderCode, PhysicalStart: uint64(codeBase), NumberOfPages: codeSize / abi.FrameSize}

	stride := uint32(unsafe.Sizeof(abi.MemoryDescriptor{}))

	return &abi.BootAbi{
		Version: abi.Version,
		Framebuffer: abi.Framebuffer{
			Base: fbBase, Size: fbSize,
			Width: 800, Height: 600, PixelsPerScanline: 800,
			PixelFormat: abi.PixelFormatRGB,
		},
		MemoryMap: abi.MemoryMap{
			DescriptorsPhys: uint64(descBase),
			MapSize:         uint64(stride) * 3,
			EntrySize:       stride,
			EntryVersion:    1,
			EntryCount:      3,
		},
	}, nil
}

// sanityCheck runs the original_source-supplemented "free-region sum"
// property (spec.md's scenario 1) plus a couple of structural checks,
// aggregating every failure instead of stopping at the first.
func sanityCheck(r *meminit.Result) error {
	var errs *multierror.Error

	if r.Allocator == nil {
		errs = multierror.Append(errs, fmt.Errorf("nil allocator"))
	} else if r.Allocator.FreeBytes() == 0 {
		errs = multierror.Append(errs, fmt.Errorf("allocator reports zero free bytes"))
	}
	if r.Hierarchy == nil {
		errs = multierror.Append(errs, fmt.Errorf("nil page-table hierarchy"))
	}
	if r.MemoryMap.DescriptorsPhys == uint64(descBase) {
		errs = multierror.Append(errs, fmt.Errorf("copied memory map still points at the firmware original"))
	}

	return errs.ErrorOrNil()
}
