package loader

import "nova/abi"

// Run drives the loader-side bring-up sequence: capture the firmware
// vendor identity, discover the framebuffer, parse the command line,
// request TSC calibration, exit boot services, and assemble the BootAbi
// the kernel reads at entry. Run never validates the result; the caller
// (the trampoline that jumps to the kernel, or a test) runs abi.Validate
// before trusting it.
func Run(fw FirmwareServices) (*abi.BootAbi, error) {
	boot := &abi.BootAbi{Version: abi.Version}

	revision, name := fw.Vendor()
	boot.Firmware.Revision = revision
	setVendor(&boot.Firmware, name)

	fbInfo, err := fw.Framebuffer()
	if err != nil {
		return nil, &FramebufferDiscoveryError{Cause: err}
	}
	boot.Framebuffer = abi.Framebuffer{
		Base:              fbInfo.Base,
		Size:              fbInfo.Size,
		Width:             fbInfo.Width,
		Height:            fbInfo.Height,
		PixelsPerScanline: fbInfo.PixelsPerScanline,
		PixelFormat:       pixelFormat(fbInfo.BGR),
	}

	boot.Options = ParseOptions(fw.LoadOptions())

	if hz, ok := fw.CalibrateTSC(); ok {
		boot.TimestampHz = hz
	}

	mm, err := fw.ExitBootServices()
	if err != nil {
		return nil, &ExitBootServicesError{Cause: err}
	}
	boot.MemoryMap = abi.MemoryMap{
		DescriptorsPhys: mm.DescriptorsPhys,
		MapSize:         mm.MapSize,
		EntrySize:       mm.EntrySize,
		EntryVersion:    mm.EntryVersion,
		EntryCount:      mm.EntryCount,
	}

	return boot, nil
}

func pixelFormat(bgr bool) abi.PixelFormat {
	if bgr {
		return abi.PixelFormatBGR
	}
	return abi.PixelFormatRGB
}

func setVendor(f *abi.Firmware, name string) {
	n := copy(f.Vendor[:], name)
	f.VendorLen = uint8(n)
	if n < len(name) {
		f.VendorTruncated = 1
	}
}
