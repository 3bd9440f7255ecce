package modes

import (
	"testing"

	"modes1090/crc"
	"modes1090/icaofilter"
)

func TestLegacyAddressCacheAddAndTest(t *testing.T) {
	lc := NewLegacyAddressCache()
	if lc.Test(0xABCDEF) {
		t.Fatalf("expected a fresh cache to miss")
	}
	lc.Add(0xABCDEF)
	if !lc.Test(0xABCDEF) {
		t.Fatalf("expected the cache to remember an added address")
	}
	if lc.Test(0x000001) {
		t.Fatalf("expected an unrelated address to miss")
	}
}

func TestDecodeFallsBackToLegacyCacheOnFilterMiss(t *testing.T) {
	filter := icaofilter.New()

	var msg [7]byte
	msg[0] = 0 << 3
	msg[6] = 0x01 // nonzero syndrome not present in the primary filter
	checksum := crc.Checksum(msg[:], 56)

	if _, err := Decode(msg[:], filter); err != ErrFilterMiss {
		t.Fatalf("expected a miss without the legacy cache, got %v", err)
	}

	lc := NewLegacyAddressCache()
	lc.Add(checksum)

	m, err := Decode(msg[:], filter, lc)
	if err != nil {
		t.Fatalf("expected the legacy cache to recover the address, got %v", err)
	}
	if m.ICAO != checksum {
		t.Fatalf("expected ICAO %06X, got %06X", checksum, m.ICAO)
	}
}
