package demod

// sliceMessage builds a 14-byte candidate frame by PPM-slicing mag
// starting at preamble position j with the given try_phase (4..8 inclusive).
// It reads ahead up to 290 samples from j (19 preamble samples plus 112
// bits at 12 samples per 5 bits), which the caller must ensure are in
// bounds (the magnitude buffer is oversized by TrailingSamples for exactly
// this reason).
func sliceMessage(mag []uint16, j, tryPhase int) [14]byte {
	idx := j + 19 + tryPhase/5
	bytePhase := Phase(tryPhase % 5)

	var msg [14]byte
	for byteIdx := 0; byteIdx < 14; byteIdx++ {
		running := bytePhase
		var b byte
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			window := mag[idx : idx+running.step()]
			b <<= 1
			if running.calculateBit(window) {
				b |= 1
			}
			idx += sampleStep[running]
			running = running.next()
		}
		msg[byteIdx] = b
		bytePhase = bytePhase.nextStart()
	}
	return msg
}
