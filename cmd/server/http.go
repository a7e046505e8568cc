package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kc1awv/g711-gateway/internal/g711"
	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/status"
	"github.com/kc1awv/g711-gateway/internal/transcode"
)

type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func writeJSONResponse(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	rw := &responseWriter{ResponseWriter: w}
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		if !rw.wroteHeader {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return err
	}
	return nil
}

type codecInfo struct {
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	PayloadType uint8  `json:"payload_type"`
	ClockRate   int    `json:"clock_rate"`
	Default     bool   `json:"default"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSONResponse(w, map[string]string{"status": "ok"}); err != nil {
		log.Error("failed to encode health response", "err", err)
	}
}

func codecsHandler(def g711.Law) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codecs := make([]codecInfo, 0, 2)
		for _, law := range []g711.Law{g711.MuLaw, g711.ALaw} {
			codecs = append(codecs, codecInfo{
				Name:        law.String(),
				MimeType:    law.MimeType(),
				PayloadType: law.PayloadType(),
				ClockRate:   g711.ClockRate,
				Default:     law == def,
			})
		}
		if err := writeJSONResponse(w, codecs); err != nil {
			log.Error("failed to encode codec list", "err", err)
		}
	}
}

// transcodeHandler converts a whole request body. Encode expects s16le
// samples and returns G.711 bytes; decode does the reverse.
func transcodeHandler(def g711.Law, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		law := def
		if v := q.Get("law"); v != "" {
			var err error
			if law, err = g711.ParseLaw(v); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		dir, err := transcode.ParseDirection(q.Get("direction"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			log.Warn("failed to read transcode body", "err", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		out, samples, err := transcode.Convert(law, dir, nil, body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status.RecordFrameTranscoded(law.String(), dir.String(), samples)

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Audio-Law", law.String())
		if _, err := w.Write(out); err != nil {
			log.Warn("failed to write transcode response", "err", err)
		}
	}
}
