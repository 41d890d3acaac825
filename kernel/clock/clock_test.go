package clock

import "testing"

func withFakeTSC(t *testing.T, ticks *uint64) {
	t.Helper()
	orig := readTSCFn
	readTSCFn = func() uint64 { return *ticks }
	t.Cleanup(func() { readTSCFn = orig })
}

func TestNow_Uncalibrated(t *testing.T) {
	var ticks uint64 = 100
	withFakeTSC(t, &ticks)

	Init(0)
	ticks = 250
	delta, ok := Now()
	if ok {
		t.Fatalf("expected ok=false for an uncalibrated clock")
	}
	if delta != 150 {
		t.Fatalf("got delta %d, want 150", delta)
	}
}

func TestNow_Calibrated(t *testing.T) {
	var ticks uint64 = 1000
	withFakeTSC(t, &ticks)

	Init(1_000_000_000) // 1 GHz
	ticks = 3000
	ns, ok := Now()
	if !ok {
		t.Fatalf("expected ok=true for a calibrated clock")
	}
	if ns != 2000 {
		t.Fatalf("got %d ns, want 2000", ns)
	}
}

func TestNow_BeforeInit(t *testing.T) {
	initDone = false
	hz = 0
	var ticks uint64 = 42
	withFakeTSC(t, &ticks)

	_, ok := Now()
	if ok {
		t.Fatalf("expected ok=false before Init")
	}
}
