package modes

import (
	"testing"

	"modes1090/crc"
	"modes1090/icaofilter"
)

func TestScoreAllZeroShortIsInvalid(t *testing.T) {
	f := icaofilter.New()
	msg := make([]byte, 7)
	if s := ScoreMessage(msg, f); s >= 0 {
		t.Fatalf("expected negative score for all-zero short frame, got %d", s)
	}
}

func TestScoreTooShortIsInvalid(t *testing.T) {
	f := icaofilter.New()
	msg := make([]byte, 3)
	if s := ScoreMessage(msg, f); s != -2 {
		t.Fatalf("expected -2 for too-short candidate, got %d", s)
	}
}

func TestScoreDF17ZeroCRCKnownAddressScoresHigh(t *testing.T) {
	f := icaofilter.New()
	msg := buildDF17WithAddr(t, 0xAD9293)
	f.Add(0xAD9293)

	s := ScoreMessage(msg, f)
	if s < 1400 {
		t.Fatalf("expected DF17 with zero CRC to score >= 1400, got %d", s)
	}
}

// buildDF17WithAddr constructs a syntactically valid (CRC-correct) DF17
// frame for the given 24-bit address, for scorer/decoder tests.
func buildDF17WithAddr(t *testing.T, addr uint32) []byte {
	t.Helper()
	msg := make([]byte, 14)
	msg[0] = 0x8D // DF=17 (10001), CA=5 (101)
	msg[1] = byte(addr >> 16)
	msg[2] = byte(addr >> 8)
	msg[3] = byte(addr)
	// ME bytes (4..10) left zero; compute and append CRC.
	rem := crc.Checksum(msg, 112)
	msg[11] = byte(rem >> 16)
	msg[12] = byte(rem >> 8)
	msg[13] = byte(rem)
	return msg
}
