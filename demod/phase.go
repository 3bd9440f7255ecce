// Package demod implements the five-phase PPM bit slicer and the
// demodulation outer loop that ties preamble detection, bit slicing,
// scoring, and CRC-based single-bit recovery together.
package demod

// Phase is the PPM slicer's bit-timing state: a tagged variant with five
// states rather than a five-way conditional at each call site.
type Phase int

const (
	Phase0 Phase = iota
	Phase1
	Phase2
	Phase3
	Phase4
)

// sampleStep is how many magnitude samples the window advances after
// producing one bit, by phase.
var sampleStep = map[Phase]int{
	Phase0: 2,
	Phase1: 2,
	Phase2: 2,
	Phase3: 3,
	Phase4: 3,
}

// next advances the bit phase by 2 mod 5, cycling 0→2→4→1→3→0.
func (p Phase) next() Phase {
	return Phase((int(p) + 2) % 5)
}

// nextStart advances the byte-start phase by 1 mod 5.
func (p Phase) nextStart() Phase {
	return Phase((int(p) + 1) % 5)
}

// calculateBit computes the weighted difference for this phase over the
// next 3 or 4 magnitude samples starting at m[0], returning true for a
// `1` bit (difference > 0).
func (p Phase) calculateBit(m []uint16) bool {
	f := func(i int) float64 { return float64(m[i]) }
	var d float64
	switch p {
	case Phase0:
		d = 18*f(0) - 15*f(1) - 3*f(2)
	case Phase1:
		d = 14*f(0) - 5*f(1) - 9*f(2)
	case Phase2:
		d = 16*f(0) + 5*f(1) - 20*f(2)
	case Phase3:
		d = 7*f(0) + 11*f(1) - 18*f(2)
	case Phase4:
		d = 4*f(0) + 15*f(1) - 20*f(2) + f(3)
	}
	return d > 0
}

// step returns the number of samples calculateBit reads ahead for this
// phase (3, except Phase4 which reads 4).
func (p Phase) step() int {
	if p == Phase4 {
		return 4
	}
	return 3
}
