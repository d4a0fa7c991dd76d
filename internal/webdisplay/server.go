package webdisplay

import (
	"context"
	"embed"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/Thempra/xiaozhi-esp32/internal/config"
	"github.com/Thempra/xiaozhi-esp32/internal/logger"
)

//go:embed static/*
var staticFiles embed.FS

// Server owns the HTTP surface of the display mirror: the static viewer
// assets, the REST state endpoint and the WebSocket upgrade.
type Server struct {
	addr       string
	hub        *Hub
	state      StateFunc
	router     *httprouter.Router
	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

// NewServer creates the server. state produces the full_state document for
// the REST endpoint; the hub handles sessions and broadcasting.
func NewServer(cfg *config.Config, hub *Hub, state StateFunc) *Server {
	s := &Server{
		addr:  fmt.Sprintf(":%d", cfg.Port),
		hub:   hub,
		state: state,
		log:   logger.Global().WithPrefix("WebDisplay"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers connect from arbitrary hosts on the local network.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	hub.SetStateFunc(state)

	s.router = httprouter.New()
	s.router.GET("/", s.serveAsset("index.html", "text/html; charset=utf-8"))
	s.router.GET("/display.css", s.serveAsset("display.css", "text/css"))
	s.router.GET("/display.js", s.serveAsset("display.js", "application/javascript"))
	s.router.GET("/api/display/state", s.handleState)
	s.router.GET("/ws/display", s.handleWebSocket)
	return s
}

// Start binds the listen address and begins serving in the background. A
// bind failure (port in use) is returned to the caller; the rest of the
// application continues without mirroring.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("web display server: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		s.log.Info("Web display server started on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop disconnects all sessions and shuts the HTTP server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.log.Info("Web display server stopped")
	return nil
}

func (s *Server) serveAsset(name, contentType string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := staticFiles.ReadFile("static/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.state())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Failed to upgrade WebSocket: %v", err)
		return
	}

	client := newClient(s.hub, conn)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
