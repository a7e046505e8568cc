// Package g711 implements the ITU-T G.711 companders.
//
// The arithmetic follows the classic g711.c reference: a linear 16-bit sample
// is mapped to one of eight logarithmic segments and quantized to four bits
// within it. A-law and μ-law differ only in how the magnitude is biased and in
// the mask applied to the final byte.
package g711

const ClockRate = 8000

const (
	signBit   = 0x80 // sign bit of a compressed byte
	quantMask = 0x0F // quantization field
	segShift  = 4    // segment field position
	segMask   = 0x70 // segment field
)

var segmentEnd = [8]int{0xFF, 0x1FF, 0x3FF, 0x7FF, 0xFFF, 0x1FFF, 0x3FFF, 0x7FFF}

// search returns the first segment whose upper boundary is not below val,
// or len(segmentEnd) when val is out of range.
func search(val int) int {
	for i, end := range segmentEnd {
		if val <= end {
			return i
		}
	}
	return len(segmentEnd)
}
