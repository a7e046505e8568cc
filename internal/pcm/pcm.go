// Package pcm converts linear 16-bit samples to and from their byte framing.
package pcm

import (
	"encoding/binary"
	"errors"
)

var ErrOddLength = errors.New("odd PCM frame length")

// FromS16LE reads little-endian samples from b, reusing dst when it is large enough.
func FromS16LE(dst []int16, b []byte) ([]int16, error) {
	return fromBytes(dst, b, binary.LittleEndian)
}

// FromS16BE reads network-order (L16) samples from b.
func FromS16BE(dst []int16, b []byte) ([]int16, error) {
	return fromBytes(dst, b, binary.BigEndian)
}

func ToS16LE(dst []byte, pcm []int16) []byte {
	return toBytes(dst, pcm, binary.LittleEndian)
}

func ToS16BE(dst []byte, pcm []int16) []byte {
	return toBytes(dst, pcm, binary.BigEndian)
}

func fromBytes(dst []int16, b []byte, order binary.ByteOrder) ([]int16, error) {
	if len(b)%2 != 0 {
		return dst[:0], ErrOddLength
	}
	n := len(b) / 2
	if cap(dst) < n {
		dst = make([]int16, n)
	} else {
		dst = dst[:n]
	}
	for i := range dst {
		dst[i] = int16(order.Uint16(b[i*2:]))
	}
	return dst, nil
}

func toBytes(dst []byte, pcm []int16, order binary.ByteOrder) []byte {
	n := len(pcm) * 2
	if cap(dst) < n {
		dst = make([]byte, n)
	} else {
		dst = dst[:n]
	}
	for i, s := range pcm {
		order.PutUint16(dst[i*2:], uint16(s))
	}
	return dst
}
