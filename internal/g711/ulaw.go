package g711

const (
	muLawBias = 0x84 // 132 or 1000 0100
	muLawMax  = 0x7FFF

	muLawPositive = 0xFF
	muLawNegative = 0x7F
)

// LinearToMuLaw compresses a linear sample to a μ-law byte.
func LinearToMuLaw(sample int16) byte {
	pcm := int(sample)
	mask := muLawPositive
	if pcm < 0 {
		pcm = -pcm
		mask = muLawNegative
	}

	pcm += muLawBias
	if pcm > muLawMax {
		pcm = muLawMax
	}

	seg := search(pcm)
	if seg >= len(segmentEnd) {
		return byte(0x7F ^ mask)
	}

	uval := seg<<segShift | (pcm>>(seg+3))&quantMask
	return byte(uval ^ mask)
}

// MuLawToLinear expands a μ-law byte back to a linear sample.
// The bias is removed after expansion, so the output matches standard G.711
// decoders (0xFF and 0x7F decode to 0).
func MuLawToLinear(u byte) int16 {
	u = ^u

	t := int(u&quantMask)<<3 + muLawBias
	t <<= int(u&segMask) >> segShift

	if u&signBit != 0 {
		return int16(muLawBias - t)
	}
	return int16(t - muLawBias)
}
