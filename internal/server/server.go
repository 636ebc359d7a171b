package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"suncet-viewer/internal/catalog"
	"suncet-viewer/internal/config"
	"suncet-viewer/internal/logging"
	"suncet-viewer/internal/types"
	"suncet-viewer/internal/wire"
)

//go:embed web/*
var webFS embed.FS

// Controller is the part of the player the server drives.
type Controller interface {
	Submit(event types.Event) bool
	Latest() (types.RenderResult, bool)
	Controls() types.Controls
	Metrics() map[string]any
}

type client struct {
	id      string
	binary  bool
	writeMu sync.Mutex
}

type Server struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]*client
	mu       sync.Mutex
	cfg      config.AppConfig
	catalog  *catalog.Catalog
	player   Controller
	exportFn func() (string, error)

	messages chan any
	dropped  atomic.Uint64
	counters map[string]func() uint64
}

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10

	messageBuffer = 16
	dropLogEvery  = 100
)

func New(cfg config.AppConfig, cat *catalog.Catalog, player Controller, exportFn func() (string, error)) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*client),
		cfg:      cfg,
		catalog:  cat,
		player:   player,
		exportFn: exportFn,
		messages: make(chan any, messageBuffer),
		counters: make(map[string]func() uint64),
	}
}

// AddCounter reports fn under name in the /status metrics. Call it before Run.
func (s *Server) AddCounter(name string, fn func() uint64) {
	s.counters[name] = fn
}

// Publish queues a message for every websocket client without blocking.
// When the queue is full the oldest message is discarded, so the most recent
// render always reaches the clients.
func (s *Server) Publish(message any) {
	for {
		select {
		case s.messages <- message:
			return
		default:
		}
		select {
		case <-s.messages:
			n := s.dropped.Add(1)
			logging.EveryN(n, dropLogEvery, "ui queue full: dropped %d stale messages", n)
		default:
		}
	}
}

func (s *Server) Routes() (http.Handler, error) {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/config", s.handleConfig)
	r.Get("/status", s.handleStatus)
	r.Get("/frame", s.handleFrame)
	r.Get("/ws", s.handleWS)
	r.Handle("/*", http.FileServer(http.FS(sub)))
	return r, nil
}

// Run serves the UI and forwards every published message to all websocket
// clients until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	handler, err := s.Routes()
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	go s.broadcast(ctx)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &client{
		id:     uuid.New().String(),
		binary: r.URL.Query().Get("format") == "cbor",
	}
	s.mu.Lock()
	s.clients[conn] = c
	s.mu.Unlock()
	log.Printf("ws client %s connected (cbor=%v)", c.id, c.binary)

	_ = s.writeJSON(conn, c, s.configPayload())
	if latest, ok := s.player.Latest(); ok {
		_ = s.writeResult(conn, c, latest)
	}

	go func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := s.writeMessage(conn, c, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()
		defer close(done)
		defer s.removeClient(conn)
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			var request map[string]any
			if err := json.Unmarshal(payload, &request); err != nil {
				_ = s.writeJSON(conn, c, errorPayload("bad_request", "invalid JSON"))
				continue
			}
			if reply := s.handleRequest(c, request); reply != nil {
				_ = s.writeJSON(conn, c, reply)
			}
		}
	}()
}

// handleRequest maps one client message to a player event or a direct reply.
func (s *Server) handleRequest(c *client, request map[string]any) any {
	kind, _ := request["type"].(string)
	switch kind {
	case "snapshot_request":
		latest, ok := s.player.Latest()
		if !ok {
			return nil
		}
		return latest
	case "export":
		if s.exportFn == nil {
			return errorPayload("export", "export not configured")
		}
		path, err := s.exportFn()
		if err != nil {
			return errorPayload("export", err.Error())
		}
		return map[string]any{"type": "export", "path": path}
	}

	event, err := eventFromRequest(request)
	if err != nil {
		return errorPayload("bad_request", err.Error())
	}
	event.Source = c.id
	if !s.player.Submit(event) {
		return errorPayload("busy", "event queue full")
	}
	return nil
}

func eventFromRequest(request map[string]any) (types.Event, error) {
	kind, _ := request["type"].(string)
	event := types.Event{Kind: types.EventKind(kind)}
	if !event.Kind.Valid() || event.Kind == types.EventTimerTick {
		return types.Event{}, fmt.Errorf("unsupported request type %q", kind)
	}
	if enabled, ok := request["enabled"].(bool); ok {
		event.Enabled = enabled
	}
	if fps, ok := request["fps"].(float64); ok {
		event.FPS = int(fps)
	}
	// Time fields are free text; anything that is not a string is ignored.
	if start, ok := request["start_time"].(string); ok {
		event.StartTime = start
	}
	if end, ok := request["end_time"].(string); ok {
		event.EndTime = end
	}
	return event, nil
}

func errorPayload(kind string, message string) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": map[string]any{"kind": kind, "message": message},
	}
}

func (s *Server) configPayload() map[string]any {
	return map[string]any{
		"type":         "config",
		"image_dir":    s.catalog.Dir(),
		"extension":    s.cfg.Extension,
		"total_frames": s.catalog.Len(),
		"frame_rate":   s.player.Controls().FrameRate,
		"min_rate":     1,
		"max_rate":     30,
		"port":         s.cfg.Port,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.configPayload())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	controls := s.player.Controls()
	metrics := s.player.Metrics()
	metrics["ws_clients"] = s.clientCount()
	metrics["ui_messages_dropped_total"] = s.dropped.Load()
	for name, fn := range s.counters {
		metrics[name] = fn()
	}
	payload := map[string]any{
		"controls":   controls,
		"time_range": catalog.ParseTimeRange(controls.StartTime, controls.EndTime),
		"metrics":    metrics,
	}
	if latest, ok := s.player.Latest(); ok {
		payload["tick"] = latest.Tick
		payload["index"] = latest.Index
		payload["path"] = latest.Path
		if latest.Stats != nil {
			payload["image_stats"] = latest.Stats
		}
		if latest.Error != nil {
			payload["error"] = latest.Error
		}
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	latest, ok := s.player.Latest()
	if !ok {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(latest)
}

func (s *Server) broadcast(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.messages:
			textPayload, err := json.Marshal(message)
			if err != nil {
				continue
			}
			var binaryPayload []byte
			if result, ok := message.(types.RenderResult); ok {
				binaryPayload, _ = wire.EncodeRender(result)
			}
			var stale []*websocket.Conn
			s.mu.Lock()
			for conn, c := range s.clients {
				var err error
				if c.binary && binaryPayload != nil {
					err = s.writeMessage(conn, c, websocket.BinaryMessage, binaryPayload)
				} else {
					err = s.writeMessage(conn, c, websocket.TextMessage, textPayload)
				}
				if err != nil {
					stale = append(stale, conn)
				}
			}
			s.mu.Unlock()
			for _, conn := range stale {
				s.removeClient(conn)
			}
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	if c, ok := s.clients[conn]; ok {
		log.Printf("ws client %s disconnected", c.id)
	}
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) writeResult(conn *websocket.Conn, c *client, result types.RenderResult) error {
	if c.binary {
		payload, err := wire.EncodeRender(result)
		if err != nil {
			return err
		}
		return s.writeMessage(conn, c, websocket.BinaryMessage, payload)
	}
	return s.writeJSON(conn, c, result)
}

func (s *Server) writeJSON(conn *websocket.Conn, c *client, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

func (s *Server) writeMessage(conn *websocket.Conn, c *client, messageType int, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
