package abi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodedSize is the wire size of a BootAbi once serialized with Encode.
// It intentionally does not equal unsafe.Sizeof(BootAbi{}): Go struct
// layout on the host running `go test` or the host-side tools is free to
// insert compiler padding that the real packed, little-endian wire layout
// does not carry.
const EncodedSize = 4 + 2 + 4 + VendorMaxBytes + 1 + 1 + 8 + 8 + 4 + 4 + 4 + 4 + 8 + 8 + 8 + 4 + 4 + 4

// Encode writes the little-endian wire representation of b to w. This is
// used by the loader (still running under boot services, free to allocate)
// and by host-side tooling that never actually places a BootAbi at a real
// physical address.
func Encode(w io.Writer, b *BootAbi) error {
	fields := []interface{}{
		b.Version,
		b.Options.Debug,
		b.Options.Quiet,
		b.Firmware.Revision,
		b.Firmware.Vendor,
		b.Firmware.VendorLen,
		b.Firmware.VendorTruncated,
		b.Framebuffer.Base,
		b.Framebuffer.Size,
		b.Framebuffer.Width,
		b.Framebuffer.Height,
		b.Framebuffer.PixelsPerScanline,
		uint32(b.Framebuffer.PixelFormat),
		b.TimestampHz,
		b.MemoryMap.DescriptorsPhys,
		b.MemoryMap.MapSize,
		b.MemoryMap.EntrySize,
		b.MemoryMap.EntryVersion,
		b.MemoryMap.EntryCount,
	}

	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("abi: encode: %w", err)
		}
	}
	return nil
}

// Decode reads the little-endian wire representation produced by Encode.
func Decode(r io.Reader) (*BootAbi, error) {
	var b BootAbi
	var pixelFormat uint32

	fields := []interface{}{
		&b.Version,
		&b.Options.Debug,
		&b.Options.Quiet,
		&b.Firmware.Revision,
		&b.Firmware.Vendor,
		&b.Firmware.VendorLen,
		&b.Firmware.VendorTruncated,
		&b.Framebuffer.Base,
		&b.Framebuffer.Size,
		&b.Framebuffer.Width,
		&b.Framebuffer.Height,
		&b.Framebuffer.PixelsPerScanline,
		&pixelFormat,
		&b.TimestampHz,
		&b.MemoryMap.DescriptorsPhys,
		&b.MemoryMap.MapSize,
		&b.MemoryMap.EntrySize,
		&b.MemoryMap.EntryVersion,
		&b.MemoryMap.EntryCount,
	}

	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("abi: decode: %w", err)
		}
	}

	b.Framebuffer.PixelFormat = PixelFormat(pixelFormat)
	return &b, nil
}

// Bytes is a convenience wrapper around Encode for callers that want a
// plain byte slice (cmd/abidump, tests).
func Bytes(b *BootAbi) []byte {
	var buf bytes.Buffer
	buf.Grow(int(EncodedSize))
	if err := Encode(&buf, b); err != nil {
		panic(err) // bytes.Buffer never fails to write
	}
	return buf.Bytes()
}
