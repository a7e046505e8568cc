package g711

const (
	aLawMax = 0x7FFF

	aLawPositive = 0xD5
	aLawNegative = 0x55
)

// LinearToALaw compresses a linear sample to an A-law byte.
func LinearToALaw(sample int16) byte {
	pcm := int(sample)
	mask := aLawPositive
	if pcm < 0 {
		mask = aLawNegative
		pcm = -pcm - 1
		if pcm < 0 || pcm > aLawMax {
			pcm = aLawMax
		}
	}

	seg := search(pcm)
	if seg >= len(segmentEnd) {
		return byte(0x7F ^ mask)
	}

	aval := seg << segShift
	if seg < 2 {
		aval |= (pcm >> 4) & quantMask
	} else {
		aval |= (pcm >> (seg + 3)) & quantMask
	}
	return byte(aval ^ mask)
}

// ALawToLinear expands an A-law byte to the midpoint of its quantization step.
func ALawToLinear(a byte) int16 {
	a ^= aLawNegative

	t := int(a&quantMask) << 4
	seg := int(a&segMask) >> segShift
	switch seg {
	case 0:
		t += 8
	case 1:
		t += 0x108
	default:
		t += 0x108
		t <<= seg - 1
	}

	if a&signBit != 0 {
		return int16(t)
	}
	return int16(-t)
}
