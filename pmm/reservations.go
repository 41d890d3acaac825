package pmm

// ReservedRegion is a half-open byte interval [Start, End) carved out
// before the runtime allocator exists.
type ReservedRegion struct {
	Start uint64
	End   uint64
}

// Contains reports whether addr falls inside the region.
func (r ReservedRegion) Contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End
}

// Overlaps reports whether r and o share any byte.
func (r ReservedRegion) Overlaps(o ReservedRegion) bool {
	return r.Start < o.End && o.Start < r.End
}

// EarlyReservationsCapacity bounds the fixed-capacity reservation list used
// during bring-up. This repo's default of 16 follows the source design
// ("a small fixed constant, ≤ 16") but the capacity is policy, not
// correctness. The backing array is sized by this constant, so every
// EarlyReservations value holds at most 16 regions.
const EarlyReservationsCapacity = 16

// EarlyReservations is a sorted-by-start, fixed-capacity list of reserved
// regions consulted by EarlyFrameCursor before the runtime PhysicalAllocator
// exists.
type EarlyReservations struct {
	regions [EarlyReservationsCapacity]ReservedRegion
	len     int
}

// Len returns the number of regions currently stored.
func (r *EarlyReservations) Len() int { return r.len }

// Push inserts a region, keeping the list sorted by Start. It rejects
// Start >= End, rejects overlap with any existing region, and rejects the
// call once the fixed capacity is exhausted.
func (r *EarlyReservations) Push(region ReservedRegion) error {
	if region.Start >= region.End {
		return &ReservationRangeError{Start: region.Start, End: region.End}
	}
	for i := 0; i < r.len; i++ {
		if r.regions[i].Overlaps(region) {
			return &ReservationOverlapError{Start: region.Start, End: region.End}
		}
	}
	if r.len >= len(r.regions) {
		return &ReservationCapacityError{Capacity: len(r.regions)}
	}

	// Insertion-shift: find the sorted slot, then slide the tail right.
	idx := r.len
	for idx > 0 && r.regions[idx-1].Start > region.Start {
		idx--
	}
	for i := r.len; i > idx; i-- {
		r.regions[i] = r.regions[i-1]
	}
	r.regions[idx] = region
	r.len++
	return nil
}

// Contains reports whether addr lies inside any stored region.
func (r *EarlyReservations) Contains(addr uint64) bool {
	for i := 0; i < r.len; i++ {
		if r.regions[i].Contains(addr) {
			return true
		}
	}
	return false
}

// Overlaps reports whether region overlaps any stored region.
func (r *EarlyReservations) Overlaps(region ReservedRegion) bool {
	for i := 0; i < r.len; i++ {
		if r.regions[i].Overlaps(region) {
			return true
		}
	}
	return false
}

// Find returns the stored region containing addr, or false if none does.
// Used by EarlyFrameCursor to know how far to skip ahead.
func (r *EarlyReservations) Find(addr uint64) (ReservedRegion, bool) {
	for i := 0; i < r.len; i++ {
		if r.regions[i].Contains(addr) {
			return r.regions[i], true
		}
	}
	return ReservedRegion{}, false
}

// Regions returns the stored regions in sorted order. The returned slice
// aliases internal storage and must not be retained past the next Push.
func (r *EarlyReservations) Regions() []ReservedRegion {
	return r.regions[:r.len]
}

// defaultReservations is the module-level singleton described in spec.md
// §4.3: initialized lazily to empty, passed by kmain.Kmain to
// meminit.Initialize during bring-up, and never torn down. Bring-up
// code that wants an isolated instance (tests, cmd/bringupsim) should build
// its own EarlyReservations value instead of reaching for this one.
var defaultReservations EarlyReservations

// DefaultReservations returns the process-wide EarlyReservations singleton.
func DefaultReservations() *EarlyReservations { return &defaultReservations }
