package preamble

import "testing"

// syntheticPhase4 builds a 24-sample window matching the classic Mode S
// preamble shape for phase 4 (peaks at 1,3,9,12), with everything else
// near zero.
func syntheticPhase4() []uint16 {
	w := make([]uint16, 24)
	w[0] = 100
	w[1] = 4000
	w[2] = 200
	w[3] = 4000
	w[4] = 100
	w[9] = 4000
	w[12] = 4000
	w[13] = 50
	return w
}

func TestCheckAcceptsPhase4Pattern(t *testing.T) {
	w := syntheticPhase4()
	res, ok := Check(w)
	if !ok {
		t.Fatalf("expected preamble to be accepted")
	}
	if res.Phase != 4 {
		t.Fatalf("expected phase 4, got %d", res.Phase)
	}
}

// syntheticPhase3 builds a window matching phase 3's pattern: single-sample
// peaks at 1, 3, 9 and a two-sample-wide peak at 11-12.
func syntheticPhase3() []uint16 {
	w := make([]uint16, 24)
	w[0] = 100
	w[1] = 4000
	w[2] = 200
	w[3] = 4000
	w[4] = 100
	w[5] = 100
	w[6] = 100
	w[7] = 100
	w[8] = 200
	w[9] = 4000
	w[10] = 300
	w[11] = 3500
	w[12] = 3500
	w[13] = 50
	return w
}

func TestCheckAcceptsPhase3WidePeakPattern(t *testing.T) {
	res, ok := Check(syntheticPhase3())
	if !ok {
		t.Fatalf("expected preamble to be accepted")
	}
	if res.Phase != 3 {
		t.Fatalf("expected phase 3, got %d", res.Phase)
	}
}

// syntheticPhase5 builds a window matching phase 5's pattern: a peak at 1,
// two-sample-wide peaks at 3-4 and 9-10, and a peak at 12. Neither wide peak
// has a taller first or second sample, which a uniform strict-local-maximum
// test over both samples would always reject.
func syntheticPhase5() []uint16 {
	w := make([]uint16, 24)
	w[0] = 100
	w[1] = 4000
	w[2] = 200
	w[3] = 3800
	w[4] = 3900
	w[5] = 100
	w[6] = 100
	w[7] = 100
	w[8] = 200
	w[9] = 3800
	w[10] = 3900
	w[11] = 300
	w[12] = 4000
	w[13] = 50
	return w
}

func TestCheckAcceptsPhase5WidePeakPattern(t *testing.T) {
	res, ok := Check(syntheticPhase5())
	if !ok {
		t.Fatalf("expected preamble to be accepted")
	}
	if res.Phase != 5 {
		t.Fatalf("expected phase 5, got %d", res.Phase)
	}
}

// syntheticPhase6 builds a window matching phase 6's pattern: single-sample
// peaks at 1, 4, 10, 12.
func syntheticPhase6() []uint16 {
	w := make([]uint16, 24)
	w[0] = 100
	w[1] = 4000
	w[2] = 200
	w[3] = 150
	w[4] = 4000
	w[5] = 100
	w[6] = 100
	w[7] = 100
	w[8] = 100
	w[9] = 200
	w[10] = 4000
	w[11] = 300
	w[12] = 4000
	w[13] = 50
	return w
}

func TestCheckAcceptsPhase6Pattern(t *testing.T) {
	res, ok := Check(syntheticPhase6())
	if !ok {
		t.Fatalf("expected preamble to be accepted")
	}
	if res.Phase != 6 {
		t.Fatalf("expected phase 6, got %d", res.Phase)
	}
}

// syntheticPhase7 builds a window matching phase 7's pattern: a two-sample-
// wide peak at 1-2, and single-sample peaks at 4, 10, 12.
func syntheticPhase7() []uint16 {
	w := make([]uint16, 24)
	w[0] = 100
	w[1] = 3800
	w[2] = 3900
	w[3] = 150
	w[4] = 4000
	w[5] = 100
	w[6] = 100
	w[7] = 100
	w[8] = 100
	w[9] = 200
	w[10] = 4000
	w[11] = 300
	w[12] = 4000
	w[13] = 50
	return w
}

func TestCheckAcceptsPhase7WidePeakPattern(t *testing.T) {
	res, ok := Check(syntheticPhase7())
	if !ok {
		t.Fatalf("expected preamble to be accepted")
	}
	if res.Phase != 7 {
		t.Fatalf("expected phase 7, got %d", res.Phase)
	}
}

func TestCheckRejectsFlatNoise(t *testing.T) {
	w := make([]uint16, 24)
	for i := range w {
		w[i] = 100
	}
	_, ok := Check(w)
	if ok {
		t.Fatalf("expected flat noise window to be rejected")
	}
}

func TestCheckRejectsShortWindow(t *testing.T) {
	_, ok := Check(make([]uint16, 10))
	if ok {
		t.Fatalf("expected too-short window to be rejected")
	}
}

func TestCheckRejectsNoisyQuietBits(t *testing.T) {
	w := syntheticPhase4()
	w[5] = 60000 // violates quiet-bit enforcement
	_, ok := Check(w)
	if ok {
		t.Fatalf("expected rejection when quiet bit positions carry energy")
	}
}
