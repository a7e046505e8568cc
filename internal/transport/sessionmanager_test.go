package transport

import (
	"testing"

	"github.com/kc1awv/g711-gateway/internal/g711"
	"github.com/kc1awv/g711-gateway/internal/transcode"
)

func TestSessionManagerAddRemove(t *testing.T) {
	sm := NewSessionManager()
	if sm.Count() != 0 {
		t.Fatalf("expected zero sessions")
	}
	s, err := sm.AddSession()
	if err != nil {
		t.Fatalf("AddSession returned error: %v", err)
	}
	if sm.Count() != 1 {
		t.Fatalf("expected one session")
	}
	if got := sm.GetSession(s.ID); got != s {
		t.Fatalf("GetSession returned unexpected session")
	}
	if s.Pipeline == nil || s.Pipeline.Law != g711.MuLaw || s.Pipeline.Direction != transcode.Decode {
		t.Fatalf("unexpected default pipeline %+v", s.Pipeline)
	}
	sm.RemoveSession(s.ID)
	if sm.Count() != 0 {
		t.Fatalf("expected zero sessions after removal")
	}
	if _, ok := <-s.OutgoingAudio; ok {
		t.Fatalf("OutgoingAudio channel not closed")
	}
	if _, ok := <-s.OutgoingMessages; ok {
		t.Fatalf("OutgoingMessages channel not closed")
	}
}

func TestSessionManagerRemoveSessionIdempotent(t *testing.T) {
	sm := NewSessionManager()
	s, err := sm.AddSession()
	if err != nil {
		t.Fatalf("AddSession returned error: %v", err)
	}
	sm.RemoveSession(s.ID)
	sm.RemoveSession(s.ID)
	if sm.Count() != 0 {
		t.Fatalf("expected zero sessions after second removal")
	}
}

func TestSessionManagerMaxSessions(t *testing.T) {
	sm := NewSessionManager()
	sm.MaxSessions = 1
	if _, err := sm.AddSession(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sm.AddSession(); err == nil {
		t.Fatalf("expected error when max sessions reached")
	}
}

func TestSessionManagerDefaultLaw(t *testing.T) {
	sm := NewSessionManager()
	sm.DefaultLaw = g711.ALaw
	s, err := sm.AddSession()
	if err != nil {
		t.Fatalf("AddSession returned error: %v", err)
	}
	if s.Pipeline.Law != g711.ALaw {
		t.Fatalf("pipeline law = %v, want PCMA", s.Pipeline.Law)
	}
}

func TestCleanupSessionReportsError(t *testing.T) {
	s := &Session{
		OutgoingAudio:    make(chan []byte),
		OutgoingMessages: make(chan ServerMessage),
	}
	close(s.OutgoingAudio)
	close(s.OutgoingMessages)
	if err := cleanupSession(s); err == nil {
		t.Fatalf("expected error from cleanupSession when channels are pre-closed")
	}
}
