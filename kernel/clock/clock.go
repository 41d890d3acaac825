// Package clock seeds a monotonic baseline from the loader-calibrated TSC
// frequency and converts CPU ticks to nanoseconds against it.
package clock

import "nova/kernel/cpu"

// readTSCFn is overridden by tests to avoid executing the real RDTSC
// instruction, following the teacher's function-variable override idiom
// for hardware-backed calls.
var readTSCFn = cpu.ReadTSC

var (
	hz        uint64
	baseTicks uint64
	initDone  bool
)

// Init records the calibrated TSC frequency (0 = uncalibrated, per the
// loader's own convention) and the current tick count as time zero.
func Init(calibratedHz uint64) {
	hz = calibratedHz
	baseTicks = readTSCFn()
	initDone = true
}

// Now returns nanoseconds elapsed since Init, and whether the clock is
// calibrated. An uncalibrated clock (hz == 0, or Init never called) reports
// ok=false and a raw tick delta instead of dividing by zero.
func Now() (ns uint64, ok bool) {
	if !initDone || hz == 0 {
		return readTSCFn() - baseTicks, false
	}
	delta := readTSCFn() - baseTicks
	return delta * 1_000_000_000 / hz, true
}
