package demod

import (
	"modes1090/crc"
	"modes1090/icaofilter"
	"modes1090/iqbuffer"
	"modes1090/modes"
	"modes1090/preamble"
)

// maxWindow is the width of the window handed to preamble.Check at each
// position (19 + 14*16/5 = 63 samples; Check reads the first 19). The bit
// slicer reads further, up to 290 samples past the preamble start.
const maxWindow = 19 + 14*16/5

// Demodulate2400 scans buf for preambles, demodulates and scores each
// candidate across five phases, applies single-bit CRC recovery when the
// best score is marginal, and returns every accepted frame in sample
// order. filter is both read (scoring) and written (new DF11/17/18
// addresses).
func Demodulate2400(buf *iqbuffer.Buffer, filter *icaofilter.Filter) []modes.Message {
	var out []modes.Message

	data := buf.Data[:iqbuffer.TrailingSamples+buf.Length]

	j := 0
	for j < buf.Length {
		end := j + maxWindow
		if end > len(data) {
			end = len(data)
		}
		window := data[j:end]
		if len(window) < 19 {
			break
		}

		_, ok := preamble.Check(window)
		if !ok {
			j++
			continue
		}

		bestScore := int32(-2)
		var bestMsg [14]byte
		bestLen := modes.Short

		for tryPhase := 4; tryPhase <= 8; tryPhase++ {
			need := 19 + tryPhase/5 + 14*16/5
			if j+need > len(data) {
				continue
			}
			cand := sliceMessage(data[j:], 0, tryPhase)

			df := int(cand[0] >> 3)
			msgLen := modes.Short
			lenBytes := 7
			if df&0x10 != 0 {
				msgLen = modes.Long
				lenBytes = 14
			}

			score := modes.ScoreMessage(cand[:lenBytes], filter)
			if score > bestScore {
				bestScore = score
				bestMsg = cand
				bestLen = msgLen
			}
		}

		if bestScore < 0 {
			j++
			continue
		}

		lenBytes := bestLen.Bytes()
		corrected := false
		if bestScore < 1000 {
			trial := bestMsg
			if _, fixed := crc.FixSingleBitError(trial[:lenBytes], bestLen.Bits()); fixed {
				if rescored := modes.ScoreMessage(trial[:lenBytes], filter); rescored > bestScore {
					bestMsg = trial
					bestScore = rescored
					corrected = true
				}
			}
		}

		registerAddress(bestMsg[:lenBytes], filter)

		msgLenSamples := lenBytes * 8 * 12 / 5
		signalLevel := signalLevelOf(data, j, msgLenSamples)

		out = append(out, modes.Message{
			MsgLen:         bestLen,
			Msg:            bestMsg,
			SignalLevel:    signalLevel,
			Score:          bestScore,
			Timestamp:      buf.FirstSampleTimestamp12Mhz + uint64(j)*12_000_000/2_400_000,
			PhaseCorrected: corrected,
		})

		skip := msgLenSamples
		j += skip
	}

	return out
}

// registerAddress adds newly-confirmed DF11/17/18 addresses to the filter,
// mirroring the scorer's own bookkeeping.
func registerAddress(msg []byte, filter *icaofilter.Filter) {
	df := int(msg[0] >> 3)
	if len(msg) < 4 {
		return
	}
	switch df {
	case 11, 17, 18:
		addr := modes.GetBits(msg, 9, 32)
		filter.Add(addr)
	}
}

// signalLevelOf computes mean squared magnitude (normalized to [0,1])
// over n samples starting at the preamble position.
func signalLevelOf(data []uint16, j, n int) float64 {
	end := j + n
	if end > len(data) {
		end = len(data)
	}
	var sum float64
	count := 0
	for i := j; i < end; i++ {
		v := float64(data[i])
		sum += v * v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / (65535.0 * 65535.0 * float64(count))
}
