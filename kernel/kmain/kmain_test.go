package kmain

import (
	"testing"

	"nova/abi"
)

func init() {
	// CLI/STI/HLT all fault outside ring 0; host tests only exercise the
	// Go-level sequencing, not the real privileged instructions.
	disableInterruptsFn = func() {}
	enableInterruptsFn = func() {}
	haltFn = func() {}
}

func TestKmain_ReportsValidationFailure(t *testing.T) {
	orig := reportFn
	var reported error
	reportFn = func(err error) { reported = err }
	defer func() { reportFn = orig }()

	// A zeroed BootAbi fails Validate at the version check before Kmain
	// ever touches the console or memory-init path.
	boot := &abi.BootAbi{}
	Kmain(boot.Pointer())

	if reported == nil {
		t.Fatalf("expected a reported validation error")
	}
	if _, ok := reported.(*abi.VersionMismatchError); !ok {
		t.Fatalf("got %T, want *abi.VersionMismatchError", reported)
	}
}

func TestKmain_ReportsMissingGlyphSource(t *testing.T) {
	orig := reportFn
	var reported error
	reportFn = func(err error) { reported = err }
	defer func() { reportFn = orig }()

	orig2 := glyphs
	glyphs = nil
	defer func() { glyphs = orig2 }()

	boot := &abi.BootAbi{
		Version: abi.Version,
		Framebuffer: abi.Framebuffer{
			Base: 0x1000, Size: 800 * 600 * 4,
			Width: 800, Height: 600, PixelsPerScanline: 800,
		},
		MemoryMap: abi.MemoryMap{
			DescriptorsPhys: uint64(abi.DescriptorAlignment),
			MapSize:         uint64(abi.DescriptorMinSize),
			EntrySize:       abi.DescriptorMinSize,
			EntryCount:      1,
		},
	}
	Kmain(boot.Pointer())

	if _, ok := reported.(*NoGlyphSourceError); !ok {
		t.Fatalf("got %T, want *NoGlyphSourceError", reported)
	}
}
