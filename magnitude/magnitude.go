// Package magnitude converts raw IQ samples into the 16-bit magnitude
// samples the rest of the pipeline operates on.
package magnitude

import "math"

// ByteLUT maps a packed (I<<8)|Q byte pair directly to a magnitude sample.
// Built once at package init; never mutated afterward.
var ByteLUT [65536]uint16

func init() {
	for i := 0; i < 256; i++ {
		fi := (float64(i) - 127.5) / 127.5
		for q := 0; q < 256; q++ {
			fq := (float64(q) - 127.5) / 127.5
			ByteLUT[(i<<8)|q] = clampedMag(fi, fq)
		}
	}
}

// clampedMag is the single conversion both the byte LUT and the 16-bit IQ
// path route through, so they can never diverge on identical IQ content.
func clampedMag(fi, fq float64) uint16 {
	magsq := fi*fi + fq*fq
	if magsq > 1.0 {
		magsq = 1.0
	}
	return uint16(math.Sqrt(magsq)*65535 + 0.5)
}

// FromByte looks up the magnitude for a big-endian unsigned 8-bit IQ pair.
func FromByte(i, q uint8) uint16 {
	return ByteLUT[(uint16(i)<<8)|uint16(q)]
}

// FromI16 computes the magnitude for a signed 16-bit IQ sample pair.
// Sample layout on the wire is (Im, Re); callers pass whichever component
// is I and which is Q explicitly.
func FromI16(i, q int16) uint16 {
	fi := float64(i) / 32768.0
	fq := float64(q) / 32768.0
	return clampedMag(fi, fq)
}
