// Package preamble implements the five-phase Mode S preamble peak-pattern
// match over 14-sample magnitude windows.
package preamble

// Result carries the statistics computed at an accepted preamble position,
// used by the demodulator to gate acceptance and by the scorer for signal
// level.
type Result struct {
	Phase      int
	High       float64
	BaseSignal float64
	BaseNoise  float64
}

// quietOffsets are the sample offsets (relative to the preamble window
// start j) that must stay below High for every accepted phase, enforcing
// that the bit positions between pulses really are quiet.
var quietOffsets = [9]int{5, 6, 7, 8, 14, 15, 16, 17, 18}

// Check evaluates the 14-sample window win (and, for the quiet-bit check,
// the surrounding samples at offsets 14..18 relative to the window start,
// which callers pass via full for full[0] == win[0]) against the five
// known phase patterns. It returns the first matching phase's statistics,
// or ok=false if none match.
//
// full must have at least 19 samples starting at the same offset as win.
func Check(full []uint16) (Result, bool) {
	if len(full) < 19 {
		return Result{}, false
	}
	win := full[:14]

	if !(win[0] < win[1] && win[12] > win[13]) {
		return Result{}, false
	}

	m := func(i int) float64 { return float64(win[i]) }

	type candidate struct {
		phase      int
		match      func() bool
		highSum    float64
		baseSignal float64
		baseNoise  float64
	}

	// Each phase's rising/falling edge pattern allows for a two-sample-wide
	// peak where the timing falls between two clock edges (phases 3, 5, 7),
	// so these cannot be expressed as a uniform strict-local-maximum test;
	// each phase needs its own asymmetric edge comparisons.
	candidates := []candidate{
		{
			phase: 3,
			match: func() bool {
				return win[1] > win[2] && win[2] < win[3] && win[3] > win[4] &&
					win[8] < win[9] && win[9] > win[10] && win[10] < win[11]
			},
			highSum:    m(1) + m(3) + m(9) + m(11) + m(12),
			baseSignal: m(1) + m(3) + m(9),
			baseNoise:  m(5) + m(6) + m(7),
		},
		{
			phase: 4,
			match: func() bool {
				return win[1] > win[2] && win[2] < win[3] && win[3] > win[4] &&
					win[8] < win[9] && win[9] > win[10] && win[11] < win[12]
			},
			highSum:    m(1) + m(3) + m(9) + m(12),
			baseSignal: m(1) + m(3) + m(9) + m(12),
			baseNoise:  m(5) + m(6) + m(7) + m(8),
		},
		{
			phase: 5,
			match: func() bool {
				return win[1] > win[2] && win[2] < win[3] && win[4] > win[5] &&
					win[8] < win[9] && win[10] > win[11] && win[11] < win[12]
			},
			highSum:    m(1) + m(3) + m(4) + m(9) + m(10) + m(12),
			baseSignal: m(1) + m(12),
			baseNoise:  m(6) + m(7),
		},
		{
			phase: 6,
			match: func() bool {
				return win[1] > win[2] && win[3] < win[4] && win[4] > win[5] &&
					win[9] < win[10] && win[10] > win[11] && win[11] < win[12]
			},
			highSum:    m(1) + m(4) + m(10) + m(12),
			baseSignal: m(1) + m(4) + m(10) + m(12),
			baseNoise:  m(5) + m(6) + m(7) + m(8),
		},
		{
			phase: 7,
			match: func() bool {
				return win[2] > win[3] && win[3] < win[4] && win[4] > win[5] &&
					win[9] < win[10] && win[10] > win[11] && win[11] < win[12]
			},
			highSum:    m(1) + m(2) + m(4) + m(10) + m(12),
			baseSignal: m(4) + m(10) + m(12),
			baseNoise:  m(6) + m(7) + m(8),
		},
	}

	for _, c := range candidates {
		if !c.match() {
			continue
		}
		if 2*c.baseSignal < 3*c.baseNoise {
			continue
		}

		// high is always the edge-sample sum divided by 4, even on phases
		// 3, 5, and 7 whose sum spans 5 or 6 samples rather than 4.
		high := c.highSum / 4

		quiet := true
		for _, off := range quietOffsets {
			if off >= len(full) {
				continue
			}
			if float64(full[off]) >= high {
				quiet = false
				break
			}
		}
		if !quiet {
			continue
		}

		return Result{Phase: c.phase, High: high, BaseSignal: c.baseSignal, BaseNoise: c.baseNoise}, true
	}

	return Result{}, false
}
