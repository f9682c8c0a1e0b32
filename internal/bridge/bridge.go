// Package bridge connects a game host to the engine over WebSocket. The host
// streams world actions in; the server streams sound, marker and notify
// commands back out to every connected host.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	jberrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/scenario"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
)

// Outbound frame types.
const (
	FrameCommand = "command"
	FrameNotice  = "notice"
	FrameError   = "error"
	FrameHello   = "hello"
)

// Frame is one outbound message.
type Frame struct {
	Type    string       `json:"type"`
	Conn    string       `json:"conn,omitempty"`
	Command *sim.Command `json:"command,omitempty"`
	Notice  *core.Notice `json:"notice,omitempty"`
	Error   string       `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Server is the host bridge.
type Server struct {
	loop   *schedule.Loop
	world  *sim.World
	engine *engine.Engine
	path   string
	log    zerolog.Logger

	mu      sync.Mutex
	clients map[string]*client
}

// NewServer creates a bridge. The world's command hook and the engine's
// observer are taken over by the server.
func NewServer(loop *schedule.Loop, world *sim.World, e *engine.Engine, path string, log zerolog.Logger) *Server {
	if path == "" {
		path = "/host"
	}
	s := &Server{
		loop:    loop,
		world:   world,
		engine:  e,
		path:    path,
		log:     log.With().Str("component", "bridge").Logger(),
		clients: make(map[string]*client),
	}
	world.OnCommand(func(c sim.Command) {
		s.broadcast(Frame{Type: FrameCommand, Command: &c})
	})
	e.SetObserver(func(n core.Notice) {
		s.broadcast(Frame{Type: FrameNotice, Notice: &n})
	})
	return s
}

// Handler returns the HTTP handler serving the bridge endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Clients returns the number of connected hosts.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ListenAndServe serves the bridge on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("path", s.path).Msg("bridge listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeAll()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("bridge server: %w", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	s.add(c)
	s.log.Info().Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("host connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.writeLoop(ctx, c)
	s.sendTo(c, Frame{Type: FrameHello, Conn: c.id})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.handle(ctx, c, data)
	}

	s.remove(c)
	conn.Close()
	s.log.Info().Str("conn", c.id).Msg("host disconnected")
}

func (s *Server) handle(ctx context.Context, c *client, data []byte) {
	var a scenario.Action
	if err := json.Unmarshal(data, &a); err != nil {
		s.sendTo(c, Frame{Type: FrameError, Error: fmt.Sprintf("invalid message: %v", err)})
		return
	}

	var applyErr error
	if err := s.loop.Call(ctx, func() {
		applyErr = scenario.Apply(s.world, s.engine, a)
	}); err != nil {
		return
	}
	if applyErr != nil {
		s.log.Debug().Err(applyErr).Str("conn", c.id).Str("action", a.Type).Msg("action failed")
		s.sendTo(c, Frame{Type: FrameError, Error: applyErr.Error()})
	}
}

func (s *Server) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug().Err(err).Str("conn", c.id).Msg("write failed, dropping host")
				s.remove(c)
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (s *Server) add(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		_ = c.conn.Close()
		close(c.send)
		delete(s.clients, id)
	}
}

func (s *Server) sendTo(c *client, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal frame failed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		s.log.Warn().Str("conn", c.id).Msg("send buffer full, dropping frame")
	}
}

func (s *Server) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal frame failed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.log.Warn().Str("conn", c.id).Msg("send buffer full, dropping frame")
		}
	}
}

// Dial connects to a bridge as a host. It is used by tests and tooling.
func Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jberrors.ErrBridgeClosed, err)
	}
	return conn, nil
}
