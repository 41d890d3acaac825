// Package paging builds and installs the identity-mapped, 4-level x86_64
// page table hierarchy the kernel runs under after exiting boot services.
// Every range is mapped with 2 MiB huge pages (the PD level's PS bit), which
// keeps the whole address space reachable with a small, frame-table-sized
// number of page-table frames.
package paging

// entryCount is the number of entries in every table level (512 on x86_64,
// one entry per 9 bits of virtual address).
const entryCount = 512

// Entry flag bits, matching the x86_64 architectural page-table-entry
// layout used at every level.
const (
	FlagPresent  uint64 = 1 << 0
	FlagWritable uint64 = 1 << 1
	FlagHugePage uint64 = 1 << 7 // PS bit; only meaningful at the PD level
)

// addrMask isolates the physical-frame-address bits of an entry (bits 12
// through 51), discarding flag bits and the reserved/NX high bits this
// module never sets.
const addrMask uint64 = 0x000F_FFFF_FFFF_F000

// Table is a single page-table level: 512 naturally-aligned 8-byte entries
// occupying exactly one 4 KiB frame. Table is laid out to be placed directly
// at a physical frame's address via unsafe.Pointer, never copied by value.
type Table struct {
	entries [entryCount]uint64
}

// Clear zeroes every entry, used when a freshly allocated frame is claimed
// for a new table level.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = 0
	}
}

// Set installs an entry pointing at physAddr with the given flags. physAddr
// must already be frame-aligned.
func (t *Table) Set(index int, physAddr uint64, flags uint64) {
	t.entries[index] = (physAddr & addrMask) | flags
}

// Get returns the raw entry at index.
func (t *Table) Get(index int) uint64 {
	return t.entries[index]
}

// Present reports whether the entry at index has FlagPresent set.
func (t *Table) Present(index int) bool {
	return t.entries[index]&FlagPresent != 0
}

// Address extracts the physical address an entry points at, discarding flag
// bits.
func (t *Table) Address(index int) uint64 {
	return t.entries[index] & addrMask
}

// Index slices a virtual address into its four 9-bit table indices, ordered
// from PML4 (index 0) down to PT (index 3). Since this module maps only with
// 2 MiB pages the PT level is never consulted, but the split is kept
// symmetric with the architecture for clarity.
func Index(virtAddr uint64) (pml4, pdpt, pd, pt int) {
	pml4 = int((virtAddr >> 39) & 0x1FF)
	pdpt = int((virtAddr >> 30) & 0x1FF)
	pd = int((virtAddr >> 21) & 0x1FF)
	pt = int((virtAddr >> 12) & 0x1FF)
	return
}
