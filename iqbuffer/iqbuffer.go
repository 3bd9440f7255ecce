// Package iqbuffer holds the double-buffered magnitude ring the
// demodulator reads from, carrying a trailing overlap across buffer
// swaps so frames straddling the boundary stay fully visible.
package iqbuffer

const (
	// TrailingSamples is copied from the tail of the previous buffer into
	// the head of the next one on every swap.
	TrailingSamples = 326
	// N is the number of fresh samples a buffer holds per swap.
	N = 131072
	// modeSClockHz is the canonical 12 MHz Mode S sample clock used for
	// frame timestamps, independent of the SDR's actual sample rate.
	modeSClockHz = 12_000_000
)

// Buffer is one half of the double-buffered magnitude ring.
type Buffer struct {
	Data                     [TrailingSamples + N]uint16
	Length                   int
	FirstSampleTimestamp12Mhz uint64
	Dropped                  uint64
	TotalPower               float64
}

// Push appends one magnitude sample, growing Length. Callers must not
// exceed N appends between swaps.
func (b *Buffer) Push(x uint16) {
	b.Data[TrailingSamples+b.Length] = x
	b.Length++
	b.TotalPower += float64(x) * float64(x)
}

// Pair is the alternating pair of buffers the receive loop feeds and the
// demodulator drains.
type Pair struct {
	a, b       Buffer
	useAForNext bool
}

// NewPair returns a fresh pair with buffer A live first.
func NewPair() *Pair {
	return &Pair{useAForNext: true}
}

// Current returns the buffer samples should currently be appended to.
func (p *Pair) Current() *Buffer {
	if p.useAForNext {
		return &p.a
	}
	return &p.b
}

// NextBuffer swaps to the idle buffer, carrying the trailing overlap and
// advancing the 12 MHz timestamp by the previous buffer's sample count at
// sample rate fs. Must be called once the current buffer is full.
func (p *Pair) NextBuffer(fs int) *Buffer {
	prev := p.Current()
	p.useAForNext = !p.useAForNext
	next := p.Current()

	next.FirstSampleTimestamp12Mhz = prev.FirstSampleTimestamp12Mhz +
		uint64(modeSClockHz)*uint64(prev.Length)/uint64(fs)

	copy(next.Data[0:TrailingSamples], prev.Data[prev.Length:prev.Length+TrailingSamples])
	next.Length = 0
	next.TotalPower = 0

	return next
}
