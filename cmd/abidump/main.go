// Command abidump decodes and pretty-prints a captured BootAbi blob, for
// postmortem debugging when a bring-up run went wrong and all that
// survived is the raw hand-off record (dumped to disk by a hypervisor
// debug port).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"nova/abi"
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[abidump] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	path := flag.String("in", "", "path to a raw BootAbi blob (little-endian wire format)")
	flag.Parse()

	if *path == "" {
		exit(fmt.Errorf("missing -in"))
	}

	f, err := os.Open(*path)
	if err != nil {
		exit(err)
	}
	defer f.Close()

	boot, err := abi.Decode(f)
	if err != nil {
		exit(err)
	}

	dump(boot)

	if err := abi.Validate(boot); err != nil {
		fmt.Printf("\nvalidation: FAILED: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Println("\nvalidation: OK")
}

func dump(b *abi.BootAbi) {
	fmt.Printf("version:       %d\n", b.Version)
	fmt.Printf("options:       debug=%d quiet=%d\n", b.Options.Debug, b.Options.Quiet)
	fmt.Printf("firmware:      revision=%#x vendor=%q (truncated=%d)\n",
		b.Firmware.Revision, b.Firmware.VendorString(), b.Firmware.VendorTruncated)
	fmt.Printf("framebuffer:   base=%#x size=%s (%s) %dx%d pps=%d format=%s\n",
		b.Framebuffer.Base,
		humanize.Bytes(b.Framebuffer.Size),
		humanize.Comma(int64(b.Framebuffer.Size)),
		b.Framebuffer.Width, b.Framebuffer.Height,
		b.Framebuffer.PixelsPerScanline, b.Framebuffer.PixelFormat)
	if b.TimestampHz == 0 {
		fmt.Printf("clock:         uncalibrated\n")
	} else {
		fmt.Printf("clock:         %s Hz\n", humanize.Comma(int64(b.TimestampHz)))
	}
	fmt.Printf("memory map:    descriptors@%#x size=%s entry_size=%d entry_version=%d entry_count=%d\n",
		b.MemoryMap.DescriptorsPhys,
		humanize.Bytes(b.MemoryMap.MapSize),
		b.MemoryMap.EntrySize, b.MemoryMap.EntryVersion, b.MemoryMap.EntryCount)
}
