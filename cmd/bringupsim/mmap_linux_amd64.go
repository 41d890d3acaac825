package main

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapFixed reserves length bytes of anonymous memory at the fixed address
// addr, standing in for a region of "physical" memory at a low address —
// low enough to fall inside paging's 512 GiB identity-mapped window,
// unlike an ordinary Go heap allocation.
func mmapFixed(addr, length uintptr) ([]byte, error) {
	ret, _, errno := syscall.Syscall6(
		unix.SYS_MMAP, addr, length,
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANON|unix.MAP_FIXED),
		^uintptr(0), 0,
	)
	if errno != 0 {
		return nil, errno
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ret)), length), nil
}
