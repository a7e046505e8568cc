package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kc1awv/g711-gateway/internal/g711"
	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/transcode"
)

func (s *Session) handlePing(conn jsonWriter, mu *sync.Mutex) {
	if err := writeJSON(mu, conn, ServerMessage{Type: "pong"}); err != nil {
		log.Warn("Error sending pong", "session", s.ID, "err", err)
	}
}

func (s *Session) handleFormat(conn jsonWriter, mu *sync.Mutex, data json.RawMessage) {
	var payload struct {
		Law       string `json:"law"`
		Direction string `json:"direction"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		errStr := fmt.Sprintf("Invalid format payload: %v", err)
		log.Warn("Invalid format payload", "session", s.ID, "err", err)
		sendError(conn, mu, errStr)
		return
	}

	law := s.Pipeline.Law
	if payload.Law != "" {
		var err error
		if law, err = g711.ParseLaw(payload.Law); err != nil {
			errStr := fmt.Sprintf("Unknown audio format: %s", payload.Law)
			log.Warn("Unknown audio format", "session", s.ID, "format", payload.Law)
			sendError(conn, mu, errStr)
			return
		}
	}

	dir := s.Pipeline.Direction
	if payload.Direction != "" {
		var err error
		if dir, err = transcode.ParseDirection(payload.Direction); err != nil {
			errStr := fmt.Sprintf("Unknown direction: %s", payload.Direction)
			log.Warn("Unknown direction", "session", s.ID, "direction", payload.Direction)
			sendError(conn, mu, errStr)
			return
		}
	}

	s.Pipeline = transcode.NewPipeline(law, dir)
	log.Info("Session format", "session", s.ID, "law", law.String(), "direction", dir.String())

	resp := ServerMessage{
		Type: "format",
		Data: marshalData(FormatMessage{Law: law.String(), Direction: dir.String()}),
	}
	if err := writeJSON(mu, conn, resp); err != nil {
		log.Warn("Error sending format message", "session", s.ID, "err", err)
	}
}

func (s *Session) handleListen(ctx context.Context, conn jsonWriter, mu *sync.Mutex, data json.RawMessage, cfg WebSocketConfig) {
	var payload struct {
		Addr   string `json:"addr"`
		Remote string `json:"remote"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		errStr := fmt.Sprintf("Invalid listen payload: %v", err)
		log.Warn("Invalid listen payload", "session", s.ID, "err", err)
		sendError(conn, mu, errStr)
		return
	}
	if payload.Addr == "" {
		payload.Addr = ":0"
	}

	if err := s.StartSource(ctx, cfg.NewSource, payload.Addr, payload.Remote, s.Pipeline.Law, cfg.RxTimeout); err != nil {
		errStr := fmt.Sprintf("Failed to listen for RTP: %v", err)
		log.Warn("Failed to listen for RTP", "session", s.ID, "addr", payload.Addr, "err", err)
		sendError(conn, mu, errStr)
		return
	}

	addr := s.Source.Addr().String()
	log.Info("Session listening for RTP", "session", s.ID, "addr", addr, "remote", payload.Remote)

	resp := ServerMessage{
		Type: "listening",
		Data: marshalData(ListeningMessage{Addr: addr}),
	}
	if err := writeJSON(mu, conn, resp); err != nil {
		log.Warn("Error sending listening message", "session", s.ID, "err", err)
	}
}

func (s *Session) handleStats(conn jsonWriter, mu *sync.Mutex) {
	st := s.Stats()
	resp := ServerMessage{
		Type: "stats",
		Data: marshalData(StatsMessage{Frames: st.Frames, Samples: st.Samples, Dropped: s.dropped.Load()}),
	}
	if err := writeJSON(mu, conn, resp); err != nil {
		log.Warn("Error sending stats message", "session", s.ID, "err", err)
	}
}

func (s *Session) handleDisconnect(_ *websocket.Conn, sendDisconnected func()) {
	log.Info("Session requested disconnect", "session", s.ID)
	if s.Source != nil {
		s.StopSource()
	}
	sendDisconnected()
}

func (s *Session) handleUnknown(conn jsonWriter, mu *sync.Mutex, msgType string) {
	errStr := fmt.Sprintf("Unknown message type: %s", msgType)
	log.Warn("Unknown message type", "session", s.ID, "type", msgType)
	sendError(conn, mu, errStr)
}
