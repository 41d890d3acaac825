// Package panicrpt is the single top-level handler for bring-up errors: it
// formats whatever it is given and halts the CPU, adapted from the
// teacher's kernel.Panic.
package panicrpt

import (
	"nova/internal/kfmt"
	"nova/kernel/cpu"
)

// haltFn is mocked by tests, mirroring the teacher's cpuHaltFn override.
var haltFn = cpu.Halt

// Report prints err (or, for a bare string/fmt error, its message) to the
// installed kfmt.Output and halts the CPU. Report never returns on real
// hardware; haltFn is overridden in tests so this can still be exercised.
//
// Callers that need the structured error context (an enumerated kind's
// fields) should type-switch on err before calling Report, since Report
// itself only ever calls Error() — the one place in this module formatting
// happens.
func Report(err error) {
	kfmt.Printf("\n-----------------------------------\n")
	if err != nil {
		kfmt.Printf("unrecoverable error: %s\n", err.Error())
	}
	kfmt.Printf("*** kernel panic: system halted ***")
	kfmt.Printf("\n-----------------------------------\n")

	haltFn()
}
