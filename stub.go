package main

import (
	"nova/kernel/console/font"
	"nova/kernel/kmain"
)

var bootAbiPtr uintptr

// main is the only Go symbol visible to the rt0 assembly trampoline that
// sets up the GDT and a minimal g0 struct before handing control to Go code.
// It exists to stop the compiler from optimizing away the kernel: rt0 calls
// main directly, not through anything the linker can see as reachable on
// its own.
//
// main is not expected to return; if it does, rt0 halts the CPU.
func main() {
	kmain.SetGlyphSource(font.Placeholder{})
	kmain.Kmain(bootAbiPtr)
}
