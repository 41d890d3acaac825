// Package abi defines the binary-stable hand-off record that the loader
// builds and the kernel consumes across the one-way exit-boot-services
// transition.
package abi

import "unsafe"

// Version is the compiled-in ABI version. The loader and kernel must agree
// on this value; bumping it is the only sanctioned way to add fields.
const Version uint32 = 1

// FrameSize is the architectural page size backing the memory map's frame
// accounting (4 KiB on x86_64).
const FrameSize = 4096

// VendorMaxBytes bounds the firmware vendor string captured in Firmware.
const VendorMaxBytes = 32

// PixelFormat identifies the channel order of a linear framebuffer.
type PixelFormat uint32

// The two layouts the loader is willing to hand to the kernel. Any other
// firmware-reported layout is rejected at framebuffer discovery time by the
// loader, well before a BootAbi is ever constructed.
const (
	PixelFormatRGB PixelFormat = iota
	PixelFormatBGR
)

// String implements fmt.Stringer.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatRGB:
		return "RGB"
	case PixelFormatBGR:
		return "BGR"
	default:
		return "unknown"
	}
}

// Options carries the loader command-line flags recognized at boot. Nonzero
// means enabled.
type Options struct {
	Debug uint8
	Quiet uint8
}

// Firmware captures the vendor identity reported by UEFI.
type Firmware struct {
	Revision        uint32
	Vendor          [VendorMaxBytes]byte
	VendorLen       uint8
	VendorTruncated uint8
}

// VendorString returns the captured vendor name as a Go string.
func (f *Firmware) VendorString() string {
	return string(f.Vendor[:f.VendorLen])
}

// Framebuffer describes the linear framebuffer handed off by the loader.
type Framebuffer struct {
	Base               uint64
	Size               uint64
	Width              uint32
	Height             uint32
	PixelsPerScanline  uint32
	PixelFormat        PixelFormat
}

// End returns the byte address one past the framebuffer's last byte. The
// caller must have already validated the framebuffer (see Validate); End
// itself does not guard against overflow.
func (f *Framebuffer) End() uint64 {
	return f.Base + f.Size
}

// MemoryDescriptor mirrors one entry of the firmware-provided memory map.
// The firmware-reported stride may exceed the size of this struct; callers
// must always advance by the map's EntrySize, never by unsafe.Sizeof(this).
type MemoryDescriptor struct {
	Type            DescriptorType
	_               uint32 // padding, keeps PhysicalStart 8-byte aligned
	PhysicalStart   uint64
	NumberOfPages   uint64
	Attribute       uint64
}

// DescriptorType is the firmware's enumeration of memory region kinds.
type DescriptorType uint32

// The subset of EFI_MEMORY_TYPE values this module cares about. Only
// Conventional is ever treated as usable; everything else (including values
// this enumeration does not name) is conservatively treated as reserved.
const (
	DescriptorReserved            DescriptorType = 0
	DescriptorLoaderCode          DescriptorType = 1
	DescriptorLoaderData          DescriptorType = 2
	DescriptorBootServicesCode    DescriptorType = 3
	DescriptorBootServicesData    DescriptorType = 4
	DescriptorRuntimeServicesCode DescriptorType = 5
	DescriptorRuntimeServicesData DescriptorType = 6
	DescriptorConventional        DescriptorType = 7
	DescriptorUnusable            DescriptorType = 8
	DescriptorACPIReclaim         DescriptorType = 9
	DescriptorACPINVS             DescriptorType = 10
	DescriptorMMIO                DescriptorType = 11
	DescriptorMMIOPortSpace       DescriptorType = 12
	DescriptorPalCode             DescriptorType = 13
	DescriptorPersistentMemory    DescriptorType = 14
)

// DescriptorAlignment is the required alignment of the descriptor buffer
// pointer carried in MemoryMap.
const DescriptorAlignment = uint64(unsafe.Alignof(MemoryDescriptor{}))

// DescriptorMinSize is the minimum byte size a firmware-reported entry
// stride must meet or exceed.
const DescriptorMinSize = uint32(unsafe.Sizeof(MemoryDescriptor{}))

// MemoryMap is the record form of the firmware memory map: a pointer,
// length, and stride rather than a Go slice, since it must survive a raw
// pointer hand-off across the loader/kernel boundary.
type MemoryMap struct {
	DescriptorsPhys uint64
	MapSize         uint64
	EntrySize       uint32
	EntryVersion    uint32
	EntryCount      uint32
}

// BootAbi is the complete loader-to-kernel hand-off record. Field ordering
// is frozen by Version; adding fields requires bumping Version.
type BootAbi struct {
	Version      uint32
	Options      Options
	Firmware     Firmware
	Framebuffer  Framebuffer
	TimestampHz  uint64
	MemoryMap    MemoryMap
}

// FromPointer reinterprets a raw pointer (as handed to the kernel entry
// point in the first argument register) as a *BootAbi. The caller is
// responsible for validating the result with Validate before trusting any
// field.
func FromPointer(ptr uintptr) *BootAbi {
	return (*BootAbi)(unsafe.Pointer(ptr))
}

// Pointer returns the address of this BootAbi for handing off to the
// kernel entry point.
func (b *BootAbi) Pointer() uintptr {
	return uintptr(unsafe.Pointer(b))
}
