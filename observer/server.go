// Package observer serves colony frames over HTTP and WebSocket and
// forwards control commands to the host.
package observer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/universe25/host"
	"github.com/pthm-cable/universe25/telemetry"
)

// Controller accepts control commands. *host.Host implements it.
type Controller interface {
	Submit(cmd host.Command) bool
}

// Message is the envelope for everything the server pushes to a client.
type Message struct {
	Type  string      `json:"type"` // "frame" or "error"
	Frame *host.Frame `json:"frame,omitempty"`
	Error string      `json:"error,omitempty"`
}

// CommandMsg is what a client sends to control the colony.
type CommandMsg struct {
	Command string `json:"command"`
	Value   int    `json:"value,omitempty"`
}

// Server holds the latest published frame and the connected clients.
// It never reads colony state directly.
type Server struct {
	ctrl         Controller
	historyLimit int

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	latest  *host.Frame
	history []telemetry.TickStats
	clients map[uint64]chan []byte
}

// NewServer creates an observer. historyLimit bounds the ticks kept for
// the history endpoint; zero or less keeps everything.
func NewServer(ctrl Controller, historyLimit int) *Server {
	return &Server{
		ctrl:         ctrl,
		historyLimit: historyLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Publish records a frame and fans it out to clients. Slow clients miss
// frames instead of blocking the caller.
func (s *Server) Publish(f host.Frame) {
	msg, err := json.Marshal(Message{Type: "frame", Frame: &f})
	if err != nil {
		slog.Error("failed to encode frame", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &f
	s.history = append(s.history, f.Ticks...)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = append(s.history[:0:0], s.history[len(s.history)-s.historyLimit:]...)
	}
	for _, out := range s.clients {
		select {
		case out <- msg:
		default:
		}
	}
}

// Handler returns the HTTP routes of the observer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stats", s.StatsHandler())
	mux.HandleFunc("GET /api/v1/history", s.HistoryHandler())
	mux.HandleFunc("GET /api/v1/ws", s.WSHandler())
	return mux
}

// ListenAndServe serves the observer on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("observer listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StatsHandler serves the latest aggregate statistics.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		latest := s.latest
		s.mu.Unlock()

		if latest == nil {
			http.Error(rw, "no frame published yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(rw, latest.Stats)
	}
}

// HistoryHandler serves the retained per-tick statistics.
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		history := append([]telemetry.TickStats(nil), s.history...)
		s.mu.Unlock()

		if history == nil {
			history = []telemetry.TickStats{}
		}
		writeJSON(rw, history)
	}
}

// WSHandler streams frames to the client and reads its commands.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id := s.nextID.Add(1)
		out := make(chan []byte, 64)

		s.mu.Lock()
		if s.latest != nil {
			if msg, err := json.Marshal(Message{Type: "frame", Frame: s.latest}); err == nil {
				out <- msg
			}
		}
		s.clients[id] = out
		s.mu.Unlock()
		slog.Debug("observer client connected", "client", id, "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
			slog.Debug("observer client disconnected", "client", id)
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if err := s.handleCommand(data); err != nil {
				if msg, mErr := json.Marshal(Message{Type: "error", Error: err.Error()}); mErr == nil {
					select {
					case out <- msg:
					default:
					}
				}
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// checkOrigin accepts clients without an Origin header, pages served from
// the observer's own host, and pages on a loopback host.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

var errBusy = errors.New("command queue full")

func (s *Server) handleCommand(data []byte) error {
	var msg CommandMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	cmd, err := host.ParseCommand(msg.Command, msg.Value)
	if err != nil {
		return err
	}
	if !s.ctrl.Submit(cmd) {
		return errBusy
	}
	return nil
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
