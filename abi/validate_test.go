package abi

import (
	"errors"
	"strings"
	"testing"
)

func validAbi() BootAbi {
	return BootAbi{
		Version: Version,
		Framebuffer: Framebuffer{
			Base:              0x4000_0000,
			Size:              800 * 600 * 4,
			Width:             800,
			Height:            600,
			PixelsPerScanline: 800,
			PixelFormat:       PixelFormatRGB,
		},
		MemoryMap: MemoryMap{
			DescriptorsPhys: uint64(DescriptorAlignment),
			MapSize:         uint64(DescriptorMinSize) * 3,
			EntrySize:       DescriptorMinSize,
			EntryVersion:    1,
			EntryCount:      3,
		},
	}
}

func TestValidate_HappyPath(t *testing.T) {
	abiVal := validAbi()
	if err := Validate(&abiVal); err != nil {
		t.Fatalf("expected valid abi, got %v", err)
	}
}

func TestValidate_VersionMismatch(t *testing.T) {
	abiVal := validAbi()
	abiVal.Version = 2

	err := Validate(&abiVal)
	var verr *VersionMismatchError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VersionMismatchError, got %T (%v)", err, err)
	}
	if verr.Expected != 1 || verr.Found != 2 {
		t.Fatalf("unexpected fields: %+v", verr)
	}
}

func TestValidate_Framebuffer(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Framebuffer)
		substr string
	}{
		{"zero base", func(fb *Framebuffer) { fb.Base = 0 }, "base"},
		{"scanline too small", func(fb *Framebuffer) { fb.PixelsPerScanline = fb.Width - 1 }, "scanline"},
		{"undersized buffer", func(fb *Framebuffer) { fb.Size = 100 }, "smaller"},
		{"zero dims", func(fb *Framebuffer) { fb.Width = 0 }, "dimensions"},
		{"bad pixel format", func(fb *Framebuffer) { fb.PixelFormat = PixelFormat(99) }, "pixel format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			abiVal := validAbi()
			tc.mutate(&abiVal.Framebuffer)

			err := Validate(&abiVal)
			var ferr *FramebufferInvalidError
			if !errors.As(err, &ferr) {
				t.Fatalf("expected *FramebufferInvalidError, got %T (%v)", err, err)
			}
			if !strings.Contains(ferr.Reason, tc.substr) {
				t.Fatalf("expected reason to mention %q, got %q", tc.substr, ferr.Reason)
			}
		})
	}
}

func TestValidate_MemoryMap(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MemoryMap)
	}{
		{"map size not a multiple of entry size", func(m *MemoryMap) { m.MapSize++ }},
		{"unaligned descriptor pointer", func(m *MemoryMap) { m.DescriptorsPhys++ }},
		{"entry count exceeds capacity", func(m *MemoryMap) { m.EntryCount = 100 }},
		{"entry size below descriptor size", func(m *MemoryMap) { m.EntrySize = DescriptorMinSize - 1 }},
		{"zero map size", func(m *MemoryMap) { m.MapSize = 0 }},
		{"null descriptor pointer", func(m *MemoryMap) { m.DescriptorsPhys = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			abiVal := validAbi()
			tc.mutate(&abiVal.MemoryMap)

			err := Validate(&abiVal)
			var merr *MemoryMapInvalidError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *MemoryMapInvalidError, got %T (%v)", err, err)
			}
		})
	}
}

func TestValidate_FramebufferOverflowIsCaughtNotMasked(t *testing.T) {
	abiVal := validAbi()
	abiVal.Framebuffer.PixelsPerScanline = 0xFFFF_FFFF
	abiVal.Framebuffer.Height = 0xFFFF_FFFF
	abiVal.Framebuffer.Size = 1 // tiny; a naive u64 multiply wraps around and could slip past this check

	err := Validate(&abiVal)
	var ferr *FramebufferInvalidError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FramebufferInvalidError, got %T (%v)", err, err)
	}
}
