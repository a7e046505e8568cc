package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kc1awv/g711-gateway/internal/g711"
	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/rtp"
	"github.com/kc1awv/g711-gateway/internal/rtpsource"
	"github.com/kc1awv/g711-gateway/internal/status"
	"github.com/kc1awv/g711-gateway/internal/transcode"
)

const (
	OutgoingAudioBufSize    = 100
	OutgoingMessagesBufSize = 20
)

type Session struct {
	ID       string
	Pipeline *transcode.Pipeline
	Source   *rtpsource.Source

	OutgoingAudio    chan []byte
	OutgoingMessages chan ServerMessage

	// totals across format changes and the RTP source pipeline
	frames     atomic.Uint64
	samples    atomic.Uint64
	dropped    atomic.Uint64
	packetizer *rtp.Packetizer
	talking    bool
	sourceStop chan struct{}
	sourceWG   sync.WaitGroup
}

type SessionManager struct {
	sessions    map[string]*Session
	mu          sync.RWMutex
	MaxSessions int
	DefaultLaw  g711.Law
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]*Session),
		DefaultLaw: g711.MuLaw,
	}
}

func (sm *SessionManager) AddSession() (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.MaxSessions > 0 && len(sm.sessions) >= sm.MaxSessions {
		return nil, fmt.Errorf("maximum sessions reached")
	}

	id := uuid.New().String()
	s := &Session{
		ID:               id,
		Pipeline:         transcode.NewPipeline(sm.DefaultLaw, transcode.Decode),
		OutgoingAudio:    make(chan []byte, OutgoingAudioBufSize),
		OutgoingMessages: make(chan ServerMessage, OutgoingMessagesBufSize),
	}
	sm.sessions[id] = s
	return s, nil
}

func (sm *SessionManager) RemoveSession(id string) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if ok {
		if err := cleanupSession(s); err != nil {
			log.Warn("session cleanup failed", "session", id, "err", err)
		}
	}
}

func cleanupSession(s *Session) error {
	try := func(name string, fn func()) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: %v", name, r)
			}
		}()
		fn()
		return nil
	}

	var errs []error

	if s.Source != nil {
		if err := try("StopSource", s.StopSource); err != nil {
			errs = append(errs, err)
		}
	}
	if err := try("close OutgoingAudio", func() { close(s.OutgoingAudio) }); err != nil {
		errs = append(errs, err)
	}
	if err := try("close OutgoingMessages", func() { close(s.OutgoingMessages) }); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// HandleFrame runs a binary frame through the session pipeline and queues the result.
func (s *Session) HandleFrame(frame []byte) error {
	if s.Pipeline == nil {
		return fmt.Errorf("no active pipeline")
	}
	out, err := s.Pipeline.Process(frame)
	if err != nil {
		return err
	}
	n := len(out) / 2
	if s.Pipeline.Direction == transcode.Encode {
		n = len(out)
		if s.packetizer != nil {
			s.sendRTP(out)
		}
	}
	s.countFrame(n)
	s.enqueueAudio(append([]byte(nil), out...))
	return nil
}

// sendRTP forwards encoded audio to the pinned remote of the RTP source.
func (s *Session) sendRTP(payload []byte) {
	s.packetizer.Law = s.Pipeline.Law
	for _, pkt := range s.packetizer.PacketizePayload(payload, !s.talking) {
		raw, err := pkt.Marshal()
		if err != nil {
			log.Warn("failed to marshal RTP packet", "session", s.ID, "err", err)
			return
		}
		if err := s.Source.Send(raw); err != nil {
			log.Warn("failed to send RTP packet", "session", s.ID, "err", err)
			return
		}
	}
	s.talking = true
}

func (s *Session) countFrame(samples int) {
	s.frames.Add(1)
	s.samples.Add(uint64(samples))
}

// Stats reports frames and samples converted by the session, whichever
// pipeline handled them.
func (s *Session) Stats() transcode.Stats {
	return transcode.Stats{Frames: s.frames.Load(), Samples: s.samples.Load()}
}

func (s *Session) enqueueAudio(frame []byte) {
	select {
	case s.OutgoingAudio <- frame:
	default:
		log.Warn("dropping audio frame; outgoing channel full", "session", s.ID)
		s.dropped.Add(1)
		status.RecordAudioFrameDropped()
	}
}

// StartSource replaces any running RTP source with one bound to addr.
func (s *Session) StartSource(ctx context.Context, newSource func(context.Context, string, string) (*rtpsource.Source, error), addr, remote string, law g711.Law, rxTimeout time.Duration) error {
	if s.Source != nil {
		s.StopSource()
	}

	src, err := newSource(ctx, addr, remote)
	if err != nil {
		return err
	}
	s.Source = src
	if src.Remote != nil {
		s.packetizer = rtp.NewPacketizer(law, uuid.New().ID(), 0, 0)
		s.talking = false
	}

	p := transcode.NewPipeline(law, transcode.Decode)
	s.sourceStop = make(chan struct{})
	s.sourceWG.Add(1)
	go func(stop <-chan struct{}) {
		defer s.sourceWG.Done()
		s.handleSourcePackets(src, p, stop, rxTimeout)
	}(s.sourceStop)

	return nil
}

func (s *Session) StopSource() {
	if s.sourceStop != nil {
		close(s.sourceStop)
		s.sourceStop = nil
	}
	s.sourceWG.Wait()
	s.packetizer = nil
	if s.Source != nil {
		s.Source.Close()
		s.Source = nil
	}
}

func (s *Session) handleSourcePackets(src *rtpsource.Source, p *transcode.Pipeline, stop <-chan struct{}, rxTimeout time.Duration) {
	timer := time.NewTimer(rxTimeout)
	defer timer.Stop()

	var rxSSRC uint32
	rxActive := false

	setInactive := func() {
		if rxActive {
			rxActive = false
			s.notifyRx(false, 0)
		}
	}

	for {
		select {
		case <-stop:
			setInactive()
			return
		case pkt, ok := <-src.Packets:
			if !ok {
				setInactive()
				return
			}

			out, ssrc, err := p.ProcessRTP(pkt)
			if err != nil {
				log.Warn("failed to decode RTP packet", "session", s.ID, "err", err)
				continue
			}

			if !rxActive || ssrc != rxSSRC {
				rxActive = true
				rxSSRC = ssrc
				status.RecordRTPStream()
				log.Debug("Incoming RTP stream", "session", s.ID, "ssrc", ssrc)
				s.notifyRx(true, ssrc)
			}

			s.countFrame(len(out) / 2)
			if len(out) != 0 {
				s.enqueueAudio(append([]byte(nil), out...))
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(rxTimeout)

		case <-src.Done():
			setInactive()
			return

		case <-timer.C:
			setInactive()
			timer.Reset(rxTimeout)
		}
	}
}

func (s *Session) notifyRx(active bool, ssrc uint32) {
	select {
	case s.OutgoingMessages <- ServerMessage{Type: "rx", Data: marshalData(RxStatusMessage{Active: active, SSRC: ssrc})}:
	default:
	}
}
