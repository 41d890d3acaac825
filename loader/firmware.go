// Package loader drives the UEFI-side bring-up sequence: discover firmware
// services, parse the command line, calibrate the clock, exit boot
// services, and assemble the BootAbi the kernel reads on entry.
package loader

// FramebufferInfo is what FirmwareServices reports about the active linear
// framebuffer, prior to being folded into an abi.Framebuffer.
type FramebufferInfo struct {
	Base              uint64
	Size              uint64
	Width             uint32
	Height            uint32
	PixelsPerScanline uint32
	BGR               bool
}

// MemoryMap is the memory map ExitBootServices hands back: a pointer,
// length, and stride into firmware-owned "loader data" memory that survives
// the exit-boot-services transition, mirroring abi.MemoryMap's shape one
// layer before it is folded into a BootAbi.
type MemoryMap struct {
	DescriptorsPhys uint64
	MapSize         uint64
	EntrySize       uint32
	EntryVersion    uint32
	EntryCount      uint32
}

// FirmwareServices is the capability seam standing in for the real UEFI
// protocol glue (EFI_BOOT_SERVICES, the graphics-output protocol, the
// loaded-image protocol's load-options buffer). Exactly one concrete
// implementation of this interface talks to actual firmware; every other
// caller, including every test in this module, supplies a fake.
type FirmwareServices interface {
	// Vendor reports the firmware's revision and name.
	Vendor() (revision uint32, name string)

	// Framebuffer discovers the active linear framebuffer via the
	// graphics-output protocol. An error here means no usable
	// framebuffer was found.
	Framebuffer() (FramebufferInfo, error)

	// LoadOptions returns the raw command line, already decoded to
	// UTF-8 (see DecodeUCS2 for implementations fed a raw UCS-2 buffer
	// by the loaded-image protocol).
	LoadOptions() string

	// CalibrateTSC measures the timestamp-counter frequency. ok is false
	// when no calibration source was available; the loader then hands
	// the kernel an uncalibrated (0 Hz) clock.
	CalibrateTSC() (hz uint64, ok bool)

	// ExitBootServices terminates boot services and returns the
	// authoritative memory map. After this call returns, firmware boot
	// services (allocation included) are no longer available.
	ExitBootServices() (MemoryMap, error)
}
