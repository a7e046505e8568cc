package g711

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLaw(t *testing.T) {
	tests := []struct {
		name string
		want Law
	}{
		{"pcmu", MuLaw},
		{"PCMU", MuLaw},
		{"ulaw", MuLaw},
		{"mulaw", MuLaw},
		{" g711u ", MuLaw},
		{"audio/g711-mlaw", MuLaw},
		{"pcma", ALaw},
		{"alaw", ALaw},
		{"audio/g711-alaw", ALaw},
		{"", ALaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLaw(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLaw("opus")
	require.ErrorIs(t, err, ErrUnknownLaw)
}

func TestLawAttributes(t *testing.T) {
	require.Equal(t, "PCMA", ALaw.String())
	require.Equal(t, "PCMU", MuLaw.String())
	require.Equal(t, uint8(8), ALaw.PayloadType())
	require.Equal(t, uint8(0), MuLaw.PayloadType())
	require.Equal(t, "audio/g711-alaw", ALaw.MimeType())
	require.Equal(t, "audio/g711-mlaw", MuLaw.MimeType())

	for _, law := range []Law{ALaw, MuLaw} {
		got, ok := LawFromPayloadType(law.PayloadType())
		require.True(t, ok)
		require.Equal(t, law, got)
	}
	_, ok := LawFromPayloadType(96)
	require.False(t, ok)
}

func TestLawCodecFuncs(t *testing.T) {
	pcm := []int16{-32768, -1000, -1, 0, 1, 1000, 32767}

	a := ALaw.Encode(nil, pcm)
	require.Equal(t, ALawEncode(nil, pcm), a)
	require.Equal(t, ALawDecode(nil, a), ALaw.Decode(nil, a))

	u := MuLaw.Encode(nil, pcm)
	require.Equal(t, MuLawEncode(nil, pcm), u)
	require.Equal(t, MuLawDecode(nil, u), MuLaw.Decode(nil, u))

	enc, dec := ALaw.Encoder(), ALaw.Decoder()
	for i, s := range pcm {
		require.Equal(t, a[i], enc(s))
		require.Equal(t, ALawToLinear(a[i]), dec(a[i]))
	}
	enc, dec = MuLaw.Encoder(), MuLaw.Decoder()
	for i, s := range pcm {
		require.Equal(t, u[i], enc(s))
		require.Equal(t, MuLawToLinear(u[i]), dec(u[i]))
	}
}
