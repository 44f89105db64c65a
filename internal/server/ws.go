package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pdjsoneditor/jsongraph/pkg/worker"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxQueuedRequests bounds the requests waiting behind a running layout.
	maxQueuedRequests = 16
)

// handleWebSocket speaks the worker protocol over one connection. Text
// messages are worker requests; events are written back as JSON text
// messages. Requests are handled one at a time in arrival order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	logger := s.logger.With("client_id", clientID)
	logger.Debug("websocket connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(s.cfg.MaxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The read loop hands requests to a single handler goroutine so pongs
	// keep arriving while a layout runs.
	requests := make(chan []byte, maxQueuedRequests)
	go s.readPump(ctx, cancel, conn, requests, logger)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	events := make(chan worker.Event, 64)
	handlerDone := make(chan struct{})
	go func() {
		defer close(handlerDone)
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-requests:
				if !ok {
					return
				}
				s.worker.HandleMessage(ctx, data, func(ev worker.Event) {
					select {
					case events <- ev:
					case <-ctx.Done():
					}
				})
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				<-handlerDone
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("websocket write failed", "error", err)
				cancel()
				<-handlerDone
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cancel()
				<-handlerDone
				return
			}
		}
	}
}

// readPump forwards text messages to out until the peer goes away, then
// cancels the connection context. It never blocks on a full queue, so pongs
// are read while a long layout runs; requests that do not fit are dropped.
func (s *Server) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out chan<- []byte, logger *log.Logger) {
	defer cancel()
	defer close(out)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Warn("websocket read error", "error", err)
			} else {
				logger.Debug("websocket closed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if !enqueue(out, data) {
			logger.Warn("dropping websocket request, queue full", "queued", cap(out))
		}
	}
}

// enqueue hands data to out without blocking. It reports false when out is
// full.
func enqueue(out chan<- []byte, data []byte) bool {
	select {
	case out <- data:
		return true
	default:
		return false
	}
}
