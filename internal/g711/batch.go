package g711

// EncodeALaw writes the A-law encoding of src[:n] into dst[:n].
// Both slices must hold at least n elements.
func EncodeALaw(dst []byte, src []int16, n int) {
	for i := 0; i < n; i++ {
		dst[i] = LinearToALaw(src[i])
	}
}

func DecodeALaw(dst []int16, src []byte, n int) {
	for i := 0; i < n; i++ {
		dst[i] = ALawToLinear(src[i])
	}
}

func EncodeMuLaw(dst []byte, src []int16, n int) {
	for i := 0; i < n; i++ {
		dst[i] = LinearToMuLaw(src[i])
	}
}

func DecodeMuLaw(dst []int16, src []byte, n int) {
	for i := 0; i < n; i++ {
		dst[i] = MuLawToLinear(src[i])
	}
}

func ALawEncode(dst []byte, pcm []int16) []byte {
	dst = growBytes(dst, len(pcm))
	EncodeALaw(dst, pcm, len(pcm))
	return dst
}

func ALawDecode(dst []int16, a []byte) []int16 {
	dst = growSamples(dst, len(a))
	DecodeALaw(dst, a, len(a))
	return dst
}

func MuLawEncode(dst []byte, pcm []int16) []byte {
	dst = growBytes(dst, len(pcm))
	EncodeMuLaw(dst, pcm, len(pcm))
	return dst
}

func MuLawDecode(dst []int16, mu []byte) []int16 {
	dst = growSamples(dst, len(mu))
	DecodeMuLaw(dst, mu, len(mu))
	return dst
}

func growBytes(dst []byte, n int) []byte {
	if cap(dst) < n {
		return make([]byte, n)
	}
	return dst[:n]
}

func growSamples(dst []int16, n int) []int16 {
	if cap(dst) < n {
		return make([]int16, n)
	}
	return dst[:n]
}
