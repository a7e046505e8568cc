package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/rtpsource"
)

type WebSocketConfig struct {
	OriginValidator func(string) bool
	NewSource       func(ctx context.Context, addr, remote string) (*rtpsource.Source, error)
	PingInterval    time.Duration
	PongWait        time.Duration
	RxTimeout       time.Duration
	ServerName      string
}

func (c *WebSocketConfig) applyDefaults() {
	if c.OriginValidator == nil {
		c.OriginValidator = func(string) bool { return false }
	}
	if c.NewSource == nil {
		c.NewSource = rtpsource.Listen
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.RxTimeout <= 0 {
		c.RxTimeout = defaultRxTimeout
	}
}

type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ServerMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type WelcomeMessage struct {
	SessionID string `json:"session_id"`
	Server    string `json:"server"`
	Law       string `json:"law"`
	Direction string `json:"direction"`
}

type FormatMessage struct {
	Law       string `json:"law"`
	Direction string `json:"direction"`
}

type ListeningMessage struct {
	Addr string `json:"addr"`
}

type RxStatusMessage struct {
	Active bool   `json:"active"`
	SSRC   uint32 `json:"ssrc,omitempty"`
}

type StatsMessage struct {
	Frames  uint64 `json:"frames"`
	Samples uint64 `json:"samples"`
	Dropped uint64 `json:"dropped"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func marshalData(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn("Error marshaling message", "err", err)
		return nil
	}
	return b
}

type jsonWriter interface {
	SetWriteDeadline(time.Time) error
	WriteJSON(v interface{}) error
}

type messageWriter interface {
	SetWriteDeadline(time.Time) error
	WriteMessage(messageType int, data []byte) error
}

const (
	defaultPingInterval = 30 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultRxTimeout    = 2 * time.Second
	maxMessageSize      = 64 * 1024
)

var writeTimeout = 5 * time.Second

func writeJSON(mu *sync.Mutex, conn jsonWriter, v any) error {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

func writeMessage(mu *sync.Mutex, conn messageWriter, messageType int, data []byte) error {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(messageType, data)
}

func sendError(conn jsonWriter, mu *sync.Mutex, message string) {
	errMsg := ServerMessage{
		Type: "error",
		Data: marshalData(ErrorMessage{Message: message}),
	}
	if err := writeJSON(mu, conn, errMsg); err != nil {
		log.Warn("Error sending error message", "err", err)
	}
}
