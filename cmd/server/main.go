package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kc1awv/g711-gateway/internal/config"
	"github.com/kc1awv/g711-gateway/internal/cors"
	log "github.com/kc1awv/g711-gateway/internal/logger"
	"github.com/kc1awv/g711-gateway/internal/rtpsource"
	"github.com/kc1awv/g711-gateway/internal/status"
	"github.com/kc1awv/g711-gateway/internal/transport"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

func corsMiddleware(validateOrigin func(string) bool, allowedMethods, allowedHeaders []string, next http.Handler) http.Handler {
	headers := strings.Join(allowedHeaders, ", ")
	methods := strings.Join(allowedMethods, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		if origin := r.Header.Get("Origin"); origin != "" {
			if validateOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", headers)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}
	log.Configure(cfg.LogLevel, cfg.LogFormat)

	rules := make([]string, 0, len(cfg.AllowedOrigins))
	for _, r := range cfg.AllowedOrigins {
		rules = append(rules, r.String())
	}
	log.Debug("allowed origins", "rules", rules)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	originValidator := cors.NewOriginValidator(cfg.AllowedOrigins)
	wsCfg := transport.WebSocketConfig{
		OriginValidator: originValidator,
		PingInterval:    cfg.WSPingInterval,
		PongWait:        cfg.WSPongWait,
		RxTimeout:       cfg.RTPRxTimeout,
		ServerName:      cfg.ServerName,
		NewSource:       rtpsource.Listen,
	}

	addr := cfg.Address()

	manager := transport.NewSessionManager()
	manager.DefaultLaw = cfg.DefaultLaw
	if cfg.MaxSessions > 0 {
		manager.MaxSessions = cfg.MaxSessions
	}

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				status.RecordHeartbeat(manager.Count())
			case <-rootCtx.Done():
				return
			}
		}
	}()

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/api/codecs", codecsHandler(cfg.DefaultLaw))
	mux.HandleFunc("/api/transcode", transcodeHandler(cfg.DefaultLaw, cfg.MaxTranscodeBytes))

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		transport.HandleWebSocket(manager, wsCfg, w, r)
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(originValidator, cfg.AllowedMethods, cfg.AllowedHeaders, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Info("G.711 gateway listening", "addr", addr, "law", cfg.DefaultLaw.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server shutdown failed", "err", err)
	}
}
