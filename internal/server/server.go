package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muldr/camscan/internal/discovery"
	"github.com/muldr/camscan/internal/logging"
	"github.com/muldr/camscan/internal/version"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// readLimit bounds subscriber messages; subscribers only listen.
	readLimit = 512
)

// Config holds the event bridge configuration
type Config struct {
	Host string
	Port int
}

// Server exposes discovery sessions over HTTP: a WebSocket event feed at
// /ws, a scan trigger at /scan, and a status endpoint at /status.
type Server struct {
	cfg      *Config
	hub      *Hub
	engine   *discovery.Engine
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// New creates a Server bridging engine's events to subscribers. The caller
// must construct the engine with this server's Sink (or a MultiSink that
// includes it).
func New(cfg *Config, engine *discovery.Engine, hub *Hub) *Server {
	return &Server{
		cfg:    cfg,
		hub:    hub,
		engine: engine,
		upgrader: websocket.Upgrader{
			// LAN tool; subscribers are local dashboards
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logging.GetLogger().Named("server"),
	}
}

// Sink returns the hub as a discovery event sink.
func (s *Server) Sink() discovery.EventSink {
	return s.hub
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/scan", s.handleScan)
	mux.HandleFunc("/status", s.handleStatus)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("event bridge listening", zap.String("addr", addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// handleWS upgrades the connection and registers it with the hub. The read
// loop exists only to notice the peer going away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed",
			zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	s.hub.add(conn)
	conn.SetReadLimit(readLimit)

	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleScan starts a discovery session. Returns 409 when one is running.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	// The session must outlive this request, so it gets a background
	// context rather than r.Context().
	if err := s.engine.Start(context.Background()); err != nil {
		if err == discovery.ErrSessionActive {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleStatus reports the engine state and server version.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"state":   s.engine.State().String(),
		"version": version.Full(),
	})
}
