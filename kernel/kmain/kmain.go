// Package kmain sequences the kernel's earliest init path, adapted from
// the teacher's kernel.Kmain / kernel/kmain.Kmain: validate the hand-off
// record, stand up the console and clock, then run memory init.
package kmain

import (
	"unsafe"

	"nova/abi"
	"nova/internal/kfmt"
	"nova/kernel/bootopt"
	"nova/kernel/clock"
	"nova/kernel/console"
	"nova/kernel/console/logo"
	"nova/kernel/cpu"
	"nova/kernel/goruntime"
	"nova/kernel/panicrpt"
	"nova/meminit"
	"nova/pmm"
)

// kernelCodeMarker's address stands in for "a known kernel code symbol":
// any address inside the loaded image's data/code region lets meminit
// locate the firmware descriptor covering the kernel image, which is all
// step 4 of the bring-up sequence needs.
var kernelCodeMarker byte

// glyphs is supplied by the caller through SetGlyphSource (stub.go installs
// font.Placeholder); if it is nil, Kmain reports *NoGlyphSourceError
// through reportFn (panicrpt.Report) and stops.
var glyphs console.GlyphSource

// SetGlyphSource installs the bitmap font Kmain's console uses. It must be
// called before Kmain.
func SetGlyphSource(g console.GlyphSource) { glyphs = g }

// reportFn lets tests observe a reported error without halting the test
// process, mirroring panicrpt's own haltFn override.
var reportFn = panicrpt.Report

// disableInterruptsFn/enableInterruptsFn/haltFn are overridden by tests:
// CLI/STI/HLT all fault outside ring 0, the same host-testability problem
// paging.Install's CR3 write has, solved the same way.
var (
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
	haltFn              = cpu.Halt
)

// Kmain is called from the module's main function (stub.go), which the rt0
// assembly trampoline enters; it takes the physical address of the BootAbi
// the loader constructed. Kmain is not
// expected to return; on any bring-up failure it reports through
// panicrpt and halts instead of unwinding.
//
//go:noinline
func Kmain(bootAbiPtr uintptr) {
	disableInterruptsFn()

	boot := abi.FromPointer(bootAbiPtr)
	if err := abi.Validate(boot); err != nil {
		reportFn(err)
		return
	}

	bootopt.Init(boot.Options.Debug != 0, boot.Options.Quiet != 0)

	if glyphs == nil {
		reportFn(&NoGlyphSourceError{})
		return
	}
	fb := console.NewFramebuffer(
		boot.Framebuffer.Base, boot.Framebuffer.Size,
		boot.Framebuffer.Width, boot.Framebuffer.Height,
		boot.Framebuffer.PixelsPerScanline,
		boot.Framebuffer.PixelFormat == abi.PixelFormatBGR,
	)
	writer := console.NewWriter(fb, glyphs)
	writer.Clear()
	logo.Draw(fb, &logo.Default, 0, 0)
	kfmt.SetOutput(writer)

	clock.Init(boot.TimestampHz)

	kfmt.Printf("nova: booting (version %d)\n", boot.Version)

	var rspMarker byte
	rsp := uint64(uintptr(unsafe.Pointer(&rspMarker)))
	kernelCodeAddr := uint64(uintptr(unsafe.Pointer(&kernelCodeMarker)))

	result, err := meminit.Initialize(boot, rsp, kernelCodeAddr, pmm.DefaultReservations(), nil)
	if err != nil {
		reportFn(err)
		return
	}
	goruntime.SetAllocator(result.Allocator)

	kfmt.Printf("nova: memory init complete\n")

	enableInterruptsFn()
	for {
		haltFn()
	}
}
