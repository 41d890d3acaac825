package abi

// Validate performs the defensive checks described for BootAbi before any
// of its fields are trusted by the kernel. Validate never mutates its
// argument and allocates nothing beyond the error value it returns.
func Validate(b *BootAbi) error {
	if b.Version != Version {
		return &VersionMismatchError{Expected: Version, Found: b.Version}
	}

	if err := validateFramebuffer(&b.Framebuffer); err != nil {
		return err
	}

	return validateMemoryMap(&b.MemoryMap)
}

func validateFramebuffer(fb *Framebuffer) error {
	if fb.Base == 0 {
		return &FramebufferInvalidError{Reason: "base address is null"}
	}
	if fb.Size == 0 {
		return &FramebufferInvalidError{Reason: "buffer size is zero"}
	}
	if fb.Width == 0 || fb.Height == 0 {
		return &FramebufferInvalidError{Reason: "dimensions are zero"}
	}
	if fb.PixelsPerScanline == 0 {
		return &FramebufferInvalidError{Reason: "pixels per scanline is zero"}
	}
	if fb.PixelsPerScanline < fb.Width {
		return &FramebufferInvalidError{Reason: "pixels per scanline smaller than width"}
	}
	if fb.PixelFormat != PixelFormatRGB && fb.PixelFormat != PixelFormatBGR {
		return &FramebufferInvalidError{Reason: "unsupported pixel format"}
	}

	// Compute in a width wider than u64 so a legitimately huge scanline
	// count can never wrap around and slip past the size check.
	required := uint64(4) * uint64(fb.PixelsPerScanline)
	requiredHi, requiredLo := bits128Mul(required, uint64(fb.Height))
	if requiredHi != 0 {
		return &FramebufferInvalidError{Reason: "required framebuffer bytes overflow"}
	}
	if fb.Size < requiredLo {
		return &FramebufferInvalidError{Reason: "buffer smaller than required size"}
	}

	return nil
}

func validateMemoryMap(m *MemoryMap) error {
	if m.DescriptorsPhys == 0 {
		return &MemoryMapInvalidError{Reason: "descriptor buffer address is null"}
	}
	if DescriptorAlignment > 0 && m.DescriptorsPhys%DescriptorAlignment != 0 {
		return &MemoryMapInvalidError{Reason: "descriptor buffer address not aligned"}
	}
	if m.EntrySize == 0 {
		return &MemoryMapInvalidError{Reason: "entry size is zero"}
	}
	if m.EntrySize < DescriptorMinSize {
		return &MemoryMapInvalidError{Reason: "entry size smaller than memory descriptor"}
	}
	if m.MapSize == 0 {
		return &MemoryMapInvalidError{Reason: "map size is zero"}
	}
	if m.MapSize%uint64(m.EntrySize) != 0 {
		return &MemoryMapInvalidError{Reason: "map size not divisible by entry size"}
	}
	maxEntries := m.MapSize / uint64(m.EntrySize)
	if uint64(m.EntryCount) > maxEntries {
		return &MemoryMapInvalidError{Reason: "entry count exceeds buffer capacity"}
	}

	return nil
}

// bits128Mul multiplies two uint64 values and returns the 128-bit product
// split into (hi, lo), so overflow is observable instead of silently
// wrapping — the "wider-than-u64 arithmetic" the spec calls for.
func bits128Mul(a, b uint64) (hi, lo uint64) {
	const mask32 = 1<<32 - 1

	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t0 := aLo * bLo
	t1 := aHi*bLo + t0>>32
	t2 := aLo*bHi + t1&mask32
	hi = aHi*bHi + t1>>32 + t2>>32
	lo = t2<<32 | t0&mask32
	return hi, lo
}
