package modes

import (
	"testing"

	"modes1090/crc"
	"modes1090/icaofilter"
)

// buildDF17 constructs a syntactically valid DF17 frame with the given ME
// payload and a correct trailing CRC.
func buildDF17(icao uint32, me [7]byte) [14]byte {
	var msg [14]byte
	msg[0] = 0x8E // DF17, CA=6
	msg[1] = byte(icao >> 16)
	msg[2] = byte(icao >> 8)
	msg[3] = byte(icao)
	copy(msg[4:11], me[:])

	rem := crc.Checksum(msg[:], 112)
	msg[11] = byte(rem >> 16)
	msg[12] = byte(rem >> 8)
	msg[13] = byte(rem)
	return msg
}

func TestDecodeAllZeroIsError(t *testing.T) {
	filter := icaofilter.New()
	var msg [14]byte
	if _, err := Decode(msg[:], filter); err != ErrAllZero {
		t.Fatalf("expected ErrAllZero, got %v", err)
	}
}

func TestDecodeDF17IdentificationCallsign(t *testing.T) {
	filter := icaofilter.New()

	var me [7]byte
	// metype 4, mesub 0, callsign of eight 'A's.
	me[0] = 4 << 3 // bits 1-5 = metype(4), bits 6-8 = mesub(0)
	// Pack 8 six-bit characters starting at bit 9. Build via GetBits-inverse
	// by setting bits manually is fiddly; use a callsign of all 'A's (index 1).
	packSixBitChars(me[:], [8]byte{1, 1, 1, 1, 1, 1, 1, 1})

	msg := buildDF17(0xABCDEF, me)

	m, err := Decode(msg[:], filter)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if m.DF != 17 {
		t.Fatalf("expected DF17, got %d", m.DF)
	}
	if m.ICAO != 0xABCDEF {
		t.Fatalf("expected ICAO 0xABCDEF, got %06X", m.ICAO)
	}
	if !m.CategoryValid {
		t.Fatalf("expected category to be decoded")
	}
	if !m.FlightValid || m.Flight != "AAAAAAAA" {
		t.Fatalf("expected flight AAAAAAAA, got %q valid=%v", m.Flight, m.FlightValid)
	}
	if !filter.Test(0xABCDEF) {
		t.Fatalf("expected DF17 address to be added to filter")
	}
}

func TestDecodeDF11RequiresCleanParity(t *testing.T) {
	filter := icaofilter.New()
	var msg [7]byte
	msg[0] = 11 << 3
	msg[1] = 0xAB
	msg[2] = 0xCD
	msg[3] = 0xEF
	rem := crc.Checksum(msg[:], 56)
	msg[4] = byte(rem >> 16)
	msg[5] = byte(rem >> 8)
	msg[6] = byte(rem)

	m, err := Decode(msg[:], filter)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if m.DF != 11 {
		t.Fatalf("expected DF11, got %d", m.DF)
	}
}

func TestDecodeDF0RejectsUnknownAddress(t *testing.T) {
	filter := icaofilter.New()
	var msg [7]byte
	msg[0] = 0 << 3
	// Nonzero CRC syndrome that does not match any filtered address.
	msg[6] = 0x01
	if _, err := Decode(msg[:], filter); err != ErrFilterMiss {
		t.Fatalf("expected ErrFilterMiss, got %v", err)
	}
}

// packSixBitChars writes eight 6-bit character indices into me starting at
// bit 9, matching the Extended Squitter identification field layout.
func packSixBitChars(me []byte, idx [8]byte) {
	bitPos := 8 // 0-based; field starts at 1-based bit 9
	for _, v := range idx {
		for b := 5; b >= 0; b-- {
			bit := (v >> uint(b)) & 1
			byteIdx := bitPos / 8
			shift := 7 - bitPos%8
			if bit != 0 {
				me[byteIdx] |= 1 << uint(shift)
			}
			bitPos++
		}
	}
}
