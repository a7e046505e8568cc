package transport

import (
	"fmt"
	"sync"

	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/transcode"
)

func (s *Session) handleAudio(conn jsonWriter, mu *sync.Mutex, msg []byte) {
	name := "G711"
	if s.Pipeline != nil && s.Pipeline.Direction == transcode.Encode {
		name = "PCM"
	}
	if err := s.HandleFrame(msg); err != nil {
		errStr := fmt.Sprintf("Error handling %s frame: %v", name, err)
		log.Warn("Error handling "+name+" frame", "session", s.ID, "length", len(msg), "err", err)
		sendError(conn, mu, errStr)
	}
}
