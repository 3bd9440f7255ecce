package icaofilter

import "testing"

func TestAddThenTestTrue(t *testing.T) {
	f := New()
	addrs := []uint32{1, 0xABCDEF, 0x123456, 0xFFFFFF, 0x7AD9C1}
	for _, a := range addrs {
		f.Add(a)
	}
	for _, a := range addrs {
		if !f.Test(a) {
			t.Fatalf("expected %06x to be present after add", a)
		}
	}
}

func TestFlushThenTestFalse(t *testing.T) {
	f := New()
	f.Add(0x42)
	f.Flush()
	if f.Test(0x42) {
		t.Fatalf("expected address to be absent after flush")
	}
}

func TestHashIsPureFunction(t *testing.T) {
	if hash(0x123456) != hash(0x123456) {
		t.Fatalf("hash must be deterministic")
	}
}

func TestRotateKeepsAgingLookup(t *testing.T) {
	f := New()
	f.Add(0x99)
	f.Rotate()
	if !f.Test(0x99) {
		t.Fatalf("expected address still found via aging generation after rotate")
	}
	if f.Test(0x1234) {
		t.Fatalf("unrelated address should not be present")
	}
}

func TestSecondMaskedInsertionAccommodatesParity(t *testing.T) {
	f := New()
	f.Add(0xABCDEF)
	if !f.Test(0x00CDEF) {
		t.Fatalf("expected masked low-16-bit variant to also be findable")
	}
}
