package pmm

import "testing"

func TestEarlyReservations_PushSortsByStart(t *testing.T) {
	var r EarlyReservations

	if err := r.Push(ReservedRegion{Start: 0x3000, End: 0x4000}); err != nil {
		t.Fatalf("push 1: %v", err)
	}
	if err := r.Push(ReservedRegion{Start: 0x1000, End: 0x2000}); err != nil {
		t.Fatalf("push 2: %v", err)
	}
	if err := r.Push(ReservedRegion{Start: 0x5000, End: 0x6000}); err != nil {
		t.Fatalf("push 3: %v", err)
	}

	got := r.Regions()
	want := []uint64{0x1000, 0x3000, 0x5000}
	if len(got) != len(want) {
		t.Fatalf("got %d regions, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Start != w {
			t.Fatalf("region %d: got start %#x, want %#x", i, got[i].Start, w)
		}
	}
}

func TestEarlyReservations_RejectsInvalidRange(t *testing.T) {
	var r EarlyReservations
	err := r.Push(ReservedRegion{Start: 0x2000, End: 0x2000})
	if _, ok := err.(*ReservationRangeError); !ok {
		t.Fatalf("got %v (%T), want *ReservationRangeError", err, err)
	}

	err = r.Push(ReservedRegion{Start: 0x3000, End: 0x1000})
	if _, ok := err.(*ReservationRangeError); !ok {
		t.Fatalf("got %v (%T), want *ReservationRangeError", err, err)
	}
}

func TestEarlyReservations_RejectsOverlap(t *testing.T) {
	var r EarlyReservations
	if err := r.Push(ReservedRegion{Start: 0x1000, End: 0x3000}); err != nil {
		t.Fatalf("push 1: %v", err)
	}

	err := r.Push(ReservedRegion{Start: 0x2000, End: 0x4000})
	if _, ok := err.(*ReservationOverlapError); !ok {
		t.Fatalf("got %v (%T), want *ReservationOverlapError", err, err)
	}

	// Exactly adjacent, non-overlapping regions are allowed.
	if err := r.Push(ReservedRegion{Start: 0x3000, End: 0x4000}); err != nil {
		t.Fatalf("adjacent push should succeed: %v", err)
	}
}

func TestEarlyReservations_RejectsOverCapacity(t *testing.T) {
	var r EarlyReservations
	for i := 0; i < EarlyReservationsCapacity; i++ {
		start := uint64(i) * 0x1000
		if err := r.Push(ReservedRegion{Start: start, End: start + 0x800}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	last := uint64(EarlyReservationsCapacity) * 0x1000
	err := r.Push(ReservedRegion{Start: last, End: last + 0x800})
	if _, ok := err.(*ReservationCapacityError); !ok {
		t.Fatalf("got %v (%T), want *ReservationCapacityError", err, err)
	}
}

func TestEarlyReservations_ContainsAndFind(t *testing.T) {
	var r EarlyReservations
	region := ReservedRegion{Start: 0x10000, End: 0x20000}
	if err := r.Push(region); err != nil {
		t.Fatalf("push: %v", err)
	}

	if !r.Contains(0x10000) || !r.Contains(0x1ffff) {
		t.Fatalf("expected boundary addresses to be contained")
	}
	if r.Contains(0x20000) {
		t.Fatalf("end address is exclusive and must not be contained")
	}

	found, ok := r.Find(0x15000)
	if !ok || found != region {
		t.Fatalf("got (%+v, %v), want (%+v, true)", found, ok, region)
	}

	if _, ok := r.Find(0x50000); ok {
		t.Fatalf("expected no region to contain an unrelated address")
	}
}

func TestEarlyReservations_Overlaps(t *testing.T) {
	var r EarlyReservations
	if err := r.Push(ReservedRegion{Start: 0x1000, End: 0x2000}); err != nil {
		t.Fatalf("push: %v", err)
	}

	if !r.Overlaps(ReservedRegion{Start: 0x1800, End: 0x2800}) {
		t.Fatalf("expected overlap to be detected")
	}
	if r.Overlaps(ReservedRegion{Start: 0x2000, End: 0x3000}) {
		t.Fatalf("adjacent, non-overlapping region must not report overlap")
	}
}

func TestDefaultReservations_IsSharedSingleton(t *testing.T) {
	a := DefaultReservations()
	b := DefaultReservations()
	if a != b {
		t.Fatalf("DefaultReservations must return the same instance across calls")
	}
}
