// Package rtp carries G.711 audio in RTP packets (RFC 3551).
package rtp

import (
	"errors"
	"fmt"

	"github.com/kc1awv/g711-gateway/internal/g711"
	"github.com/pion/rtp"
)

const (
	HeaderSize = 12

	// 20 ms at 8 kHz
	DefaultMaxPayload = 160
)

var ErrShortPacket = errors.New("RTP packet too short")

type Depacketizer struct {
	// Law is used for dynamic payload types.
	Law g711.Law
}

func (d *Depacketizer) Unmarshal(raw []byte) (*rtp.Packet, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(raw))
	}
	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("unmarshal RTP: %w", err)
	}
	return pkt, nil
}

// LawFor picks the law from the static payload type, falling back to d.Law.
func (d *Depacketizer) LawFor(pkt *rtp.Packet) g711.Law {
	if law, ok := g711.LawFromPayloadType(pkt.PayloadType); ok {
		return law
	}
	return d.Law
}

// Decode depacketizes raw and expands its payload into dst.
func (d *Depacketizer) Decode(raw []byte, dst []int16) ([]int16, *rtp.Packet, error) {
	pkt, err := d.Unmarshal(raw)
	if err != nil {
		return dst, nil, err
	}
	return d.LawFor(pkt).Decode(dst, pkt.Payload), pkt, nil
}

type Packetizer struct {
	Law        g711.Law
	SSRC       uint32
	MaxPayload int

	seq uint16
	ts  uint32
}

func NewPacketizer(law g711.Law, ssrc uint32, seq uint16, ts uint32) *Packetizer {
	return &Packetizer{Law: law, SSRC: ssrc, MaxPayload: DefaultMaxPayload, seq: seq, ts: ts}
}

// Packetize encodes pcm and splits it into packets of at most MaxPayload bytes.
// The marker bit is set on the first packet of a talkspurt only when first is true.
func (p *Packetizer) Packetize(pcm []int16, first bool) []*rtp.Packet {
	return p.PacketizePayload(p.Law.Encode(nil, pcm), first)
}

// PacketizePayload splits already encoded G.711 bytes. The packets alias payload.
func (p *Packetizer) PacketizePayload(payload []byte, first bool) []*rtp.Packet {
	size := p.MaxPayload
	if size <= 0 {
		size = DefaultMaxPayload
	}

	packets := make([]*rtp.Packet, 0, (len(payload)+size-1)/size)

	for len(payload) > 0 {
		n := min(size, len(payload))
		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         first && len(packets) == 0,
				PayloadType:    p.Law.PayloadType(),
				SequenceNumber: p.seq,
				Timestamp:      p.ts,
				SSRC:           p.SSRC,
			},
			Payload: payload[:n],
		}
		packets = append(packets, pkt)

		p.seq++
		p.ts += uint32(n)
		payload = payload[n:]
	}
	return packets
}
