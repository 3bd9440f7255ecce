package iqbuffer

import "testing"

func TestNextBufferCarriesTrailingOverlap(t *testing.T) {
	p := NewPair()
	cur := p.Current()
	for i := 0; i < N; i++ {
		cur.Push(uint16(i % 65536))
	}

	next := p.NextBuffer(2_400_000)

	wantFirst := uint16((N - TrailingSamples) % 65536)
	if next.Data[0] != wantFirst {
		t.Fatalf("expected trailing sample %d at head of new buffer, got %d", wantFirst, next.Data[0])
	}
	if next.Length != 0 {
		t.Fatalf("expected fresh buffer length 0, got %d", next.Length)
	}
}

func TestTimestampMonotonicAcrossSwaps(t *testing.T) {
	p := NewPair()
	cur := p.Current()
	for i := 0; i < 1000; i++ {
		cur.Push(0)
	}
	next := p.NextBuffer(2_400_000)
	if next.FirstSampleTimestamp12Mhz == 0 {
		t.Fatalf("expected advanced timestamp after swap")
	}

	for i := 0; i < 1000; i++ {
		next.Push(0)
	}
	after := p.NextBuffer(2_400_000)
	if after.FirstSampleTimestamp12Mhz <= next.FirstSampleTimestamp12Mhz {
		t.Fatalf("timestamp must be strictly monotonic across swaps")
	}
}

func TestLengthNeverExceedsN(t *testing.T) {
	p := NewPair()
	cur := p.Current()
	for i := 0; i < N; i++ {
		cur.Push(0)
	}
	if cur.Length > N {
		t.Fatalf("buffer length exceeded N: %d", cur.Length)
	}
}
