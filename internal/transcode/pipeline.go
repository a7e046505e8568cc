package transcode

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kc1awv/g711-gateway/internal/g711"
	"github.com/kc1awv/g711-gateway/internal/pcm"
	"github.com/kc1awv/g711-gateway/internal/rtp"
	"github.com/kc1awv/g711-gateway/internal/status"
)

type Direction int

const (
	Decode Direction = iota
	Encode
)

const (
	MaxPCMFrameSize  = 640
	MaxG711FrameSize = 320
)

var (
	ErrUnknownDirection = errors.New("unknown direction")
	ErrFrameTooLarge    = errors.New("frame too large")
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "decode":
		return Decode, nil
	case "encode":
		return Encode, nil
	}
	return Decode, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

func (d Direction) String() string {
	if d == Encode {
		return "encode"
	}
	return "decode"
}

// Pipeline converts one frame at a time. It reuses its buffers, so the slice
// returned by Process is only valid until the next call and a Pipeline must
// not be shared between goroutines.
type Pipeline struct {
	Law       g711.Law
	Direction Direction

	samples []int16
	out     []byte
	depack  rtp.Depacketizer

	frames   atomic.Uint64
	nsamples atomic.Uint64
}

func NewPipeline(law g711.Law, dir Direction) *Pipeline {
	return &Pipeline{Law: law, Direction: dir}
}

// MaxFrameSize is the largest input frame Process accepts.
func (p *Pipeline) MaxFrameSize() int {
	if p.Direction == Encode {
		return MaxPCMFrameSize
	}
	return MaxG711FrameSize
}

// Process converts s16le PCM to G.711 when encoding, G.711 to s16le PCM when decoding.
func (p *Pipeline) Process(frame []byte) ([]byte, error) {
	if len(frame) > p.MaxFrameSize() {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, len(frame))
	}

	var err error
	if p.out, p.samples, err = convert(p.Law, p.Direction, p.out, p.samples, frame); err != nil {
		return nil, err
	}

	p.record(p.Law, p.Direction, len(p.samples))
	return p.out, nil
}

// Convert transcodes a whole buffer with no frame size limit and reports the
// number of samples converted.
func Convert(law g711.Law, dir Direction, dst, src []byte) ([]byte, int, error) {
	out, samples, err := convert(law, dir, dst, nil, src)
	return out, len(samples), err
}

func convert(law g711.Law, dir Direction, dst []byte, samples []int16, src []byte) ([]byte, []int16, error) {
	var err error
	if dir == Encode {
		if samples, err = pcm.FromS16LE(samples, src); err != nil {
			return dst, samples, err
		}
		return law.Encode(dst, samples), samples, nil
	}
	samples = law.Decode(samples, src)
	return pcm.ToS16LE(dst, samples), samples, nil
}

// ProcessRTP decodes the G.711 payload of an RTP packet to s16le PCM and
// reports the packet's SSRC.
func (p *Pipeline) ProcessRTP(raw []byte) ([]byte, uint32, error) {
	p.depack.Law = p.Law
	samples, pkt, err := p.depack.Decode(raw, p.samples)
	if err != nil {
		return nil, 0, err
	}
	p.samples = samples
	p.out = pcm.ToS16LE(p.out, p.samples)

	p.record(p.depack.LawFor(pkt), Decode, len(p.samples))
	return p.out, pkt.SSRC, nil
}

func (p *Pipeline) record(law g711.Law, dir Direction, n int) {
	p.frames.Add(1)
	p.nsamples.Add(uint64(n))
	status.RecordFrameTranscoded(law.String(), dir.String(), n)
}

type Stats struct {
	Frames  uint64 `json:"frames"`
	Samples uint64 `json:"samples"`
}

func (p *Pipeline) Stats() Stats {
	return Stats{Frames: p.frames.Load(), Samples: p.nsamples.Load()}
}
