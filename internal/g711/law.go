package g711

import (
	"errors"
	"fmt"
	"strings"
)

type Law int

const (
	ALaw Law = iota
	MuLaw
)

// Static RTP payload types, RFC 3551.
const (
	PayloadTypePCMU uint8 = 0
	PayloadTypePCMA uint8 = 8
)

var ErrUnknownLaw = errors.New("unknown G.711 law")

// ParseLaw accepts the codec names used by SDP, MIME types and config files.
// An empty name selects A-law.
func ParseLaw(name string) (Law, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pcma", "alaw", "a-law", "g711a", "audio/g711-alaw":
		return ALaw, nil
	case "pcmu", "ulaw", "mulaw", "u-law", "μ-law", "g711u", "audio/g711-mlaw":
		return MuLaw, nil
	}
	return ALaw, fmt.Errorf("%w: %q", ErrUnknownLaw, name)
}

func LawFromPayloadType(pt uint8) (Law, bool) {
	switch pt {
	case PayloadTypePCMA:
		return ALaw, true
	case PayloadTypePCMU:
		return MuLaw, true
	}
	return ALaw, false
}

func (l Law) String() string {
	if l == MuLaw {
		return "PCMU"
	}
	return "PCMA"
}

func (l Law) MimeType() string {
	if l == MuLaw {
		return "audio/g711-mlaw"
	}
	return "audio/g711-alaw"
}

func (l Law) PayloadType() uint8 {
	if l == MuLaw {
		return PayloadTypePCMU
	}
	return PayloadTypePCMA
}

func (l Law) Encode(dst []byte, pcm []int16) []byte {
	if l == MuLaw {
		return MuLawEncode(dst, pcm)
	}
	return ALawEncode(dst, pcm)
}

func (l Law) Decode(dst []int16, b []byte) []int16 {
	if l == MuLaw {
		return MuLawDecode(dst, b)
	}
	return ALawDecode(dst, b)
}

// Encoder returns a table-backed scalar encoder for the law.
func (l Law) Encoder() func(int16) byte {
	t := LoadTables()
	if l == MuLaw {
		return t.LinearToMuLaw
	}
	return t.LinearToALaw
}

func (l Law) Decoder() func(byte) int16 {
	t := LoadTables()
	if l == MuLaw {
		return t.MuLawToLinear
	}
	return t.ALawToLinear
}
