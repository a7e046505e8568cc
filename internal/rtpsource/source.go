package rtpsource

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/rtp"
	"github.com/kc1awv/g711-gateway/internal/status"
)

const maxDatagramSize = 1500

var ErrNoRemote = errors.New("no remote peer")

// Source receives RTP datagrams on a local UDP port.
type Source struct {
	UDPConn *net.UDPConn
	Remote  *net.UDPAddr

	ctx    context.Context
	cancel context.CancelFunc

	Packets   chan []byte
	closeOnce sync.Once
}

// Listen binds addr. A non-empty remote restricts the accepted peer.
func Listen(ctx context.Context, addr, remote string) (*Source, error) {
	local, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	var peer *net.UDPAddr
	if remote != "" {
		if peer, err = net.ResolveUDPAddr("udp", remote); err != nil {
			return nil, err
		}
	}

	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, err
	}

	s := newSource(ctx, conn)
	s.Remote = peer
	go s.listen()
	return s, nil
}

func newSource(ctx context.Context, conn *net.UDPConn) *Source {
	ctx, cancel := context.WithCancel(ctx)
	return &Source{
		UDPConn: conn,
		ctx:     ctx,
		cancel:  cancel,
		Packets: make(chan []byte, 100),
	}
}

func (s *Source) Addr() *net.UDPAddr {
	return s.UDPConn.LocalAddr().(*net.UDPAddr)
}

func (s *Source) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Source) listen() {
	defer close(s.Packets)

	buf := make([]byte, maxDatagramSize)

	for {
		if s.ctx.Err() != nil {
			return
		}

		deadline := time.Now().Add(5 * time.Second)
		if dl, ok := s.ctx.Deadline(); ok && dl.Before(deadline) {
			deadline = dl
		}
		if err := s.UDPConn.SetReadDeadline(deadline); err != nil {
			log.Error("Failed to set read deadline", "err", err, "addr", s.Addr().String())
			return
		}

		n, addr, err := s.UDPConn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Error("UDP read error", "err", err, "addr", s.Addr().String())
			continue
		}

		if s.ctx.Err() != nil {
			return
		}

		if s.Remote != nil && addr.String() != s.Remote.String() {
			log.Warn("Ignoring packet from unexpected source", "source", addr.String(), "addr", s.Addr().String())
			continue
		}

		if n < rtp.HeaderSize {
			log.Debug("Ignoring short datagram", "length", n, "source", addr.String())
			continue
		}

		status.RecordRTPPacket()
		data := append([]byte(nil), buf[:n]...)
		select {
		case s.Packets <- data:
		default:
			log.Warn("Packet channel full, dropping RTP packet", "addr", s.Addr().String())
			status.RecordAudioFrameDropped()
		}
	}
}

// Send writes one datagram to Remote from the listening socket.
func (s *Source) Send(b []byte) error {
	if s.Remote == nil {
		return ErrNoRemote
	}
	_, err := s.UDPConn.WriteToUDP(b, s.Remote)
	return err
}

func (s *Source) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.UDPConn.Close()
	})
}
