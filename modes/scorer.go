package modes

import (
	"modes1090/crc"
	"modes1090/icaofilter"
)

// ScoreMessage implements the DF-specific confidence table: too-short or
// all-zero candidates are invalid, and every other DF is scored against
// its CRC/ICAO-filter relationship. A non-negative score means the
// candidate is plausible enough to decode; negative means reject.
func ScoreMessage(msg []byte, filter *icaofilter.Filter) int32 {
	validBits := len(msg) * 8
	if validBits < 56 {
		return -2
	}

	msgType := int(GetBits(msg, 1, 5))
	msgBits := 56
	if msgType&0x10 != 0 {
		msgBits = 112
	}
	if validBits < msgBits {
		return -2
	}

	allZero := true
	for _, b := range msg {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return -2
	}

	c := crc.Checksum(msg, msgBits)

	switch {
	case msgType == 0 || msgType == 4 || msgType == 5 || msgType == 16 ||
		(msgType >= 24 && msgType <= 31):
		if filter.Test(c) {
			return 1000
		}
		return -1

	case msgType == 11:
		iid := c & 0x7f
		crcTop := c & 0x00ffff80
		addr := GetBits(msg, 9, 32)
		inFilter := filter.Test(addr)
		switch {
		case crcTop == 0 && iid == 0 && inFilter:
			return 1600
		case crcTop == 0 && iid == 0 && !inFilter:
			return 750
		case crcTop == 0 && iid != 0 && inFilter:
			return 1000
		case crcTop == 0 && iid != 0 && !inFilter:
			return -1
		default:
			return -2
		}

	case msgType == 17 || msgType == 18:
		addr := GetBits(msg, 9, 32)
		inFilter := filter.Test(addr)
		switch {
		case c == 0 && inFilter:
			return 1800
		case c == 0 && !inFilter:
			return 1400
		default:
			return -2
		}

	case msgType == 20 || msgType == 21:
		if filter.Test(c) {
			return 1000
		}
		return -2

	default:
		return -2
	}
}
