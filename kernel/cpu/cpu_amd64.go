// Package cpu declares the handful of privileged x86_64 instructions the
// bring-up path needs: interrupt masking, page-table switching, and the
// timestamp counter. Each function is implemented in cpu_amd64.s; there is
// no portable Go body to give them since they are single privileged
// instructions.
package cpu

// EnableInterrupts enables interrupt handling (STI).
func EnableInterrupts()

// DisableInterrupts disables interrupt handling (CLI). The bring-up path
// runs fully single-threaded with interrupts disabled throughout, so this
// is called once at entry.
func DisableInterrupts()

// Halt stops instruction execution (HLT), looping forever if an interrupt
// wakes the CPU back up. Used as the terminal state after an unrecoverable
// boot error.
func Halt()

// SwitchPDT loads CR3 with the physical address of a new top-level page
// table, activating it and implicitly flushing the entire TLB.
func SwitchPDT(pdtPhysAddr uint64)

// ActivePDT returns the physical address currently loaded in CR3.
func ActivePDT() uint64

// CompilerFence is an empty, non-inlinable call the Go compiler cannot
// reorder memory accesses across. The ordering guarantee comes from it
// being an opaque function call, not from any instruction it emits.
func CompilerFence()

// ReadTSC returns the current value of the time-stamp counter (RDTSC), the
// bring-up path's only time source before any timer interrupt is armed.
func ReadTSC() uint64
