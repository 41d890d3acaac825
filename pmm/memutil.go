package pmm

import "unsafe"

// CopyPhysBytes copies n bytes starting at the physical address src into
// dst, treating src as a raw pointer. It exists for tests and tools that
// want firmware-owned bytes inside a Go-managed buffer.
func CopyPhysBytes(dst []byte, src uint64, n uint64) {
	if n == 0 {
		return
	}
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(src))), n)
	copy(dst, srcSlice)
}

// CopyPhys copies n bytes from the physical address src to the physical
// address dst, treating both as raw pointers. This is the "reinterpret,
// then copy" idiom meminit uses to snapshot the firmware memory-map buffer
// into kernel-owned frames before the firmware's own copy might be reused
// or reclaimed.
func CopyPhys(dst, src uint64, n uint64) {
	if n == 0 {
		return
	}
	dstSlice := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(dst))), n)
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(src))), n)
	copy(dstSlice, srcSlice)
}
