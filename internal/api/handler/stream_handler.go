package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flotacare/fleet-console/internal/api/metrics"
	"github.com/flotacare/fleet-console/internal/core/domain"
)

const (
	streamBuffer = 8
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// StreamHandler pushes session snapshots to websocket clients. Delivery is
// best effort: a client that falls behind misses intermediate snapshots
// but always receives a later one.
type StreamHandler struct {
	session  SessionManager
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewStreamHandler returns a StreamHandler. allowOrigin "*" accepts any
// origin; an empty value keeps the same-host check of gorilla/websocket.
func NewStreamHandler(session SessionManager, allowOrigin string, log zerolog.Logger) *StreamHandler {
	h := &StreamHandler{session: session, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowOrigin),
	}
	return h
}

func originChecker(allow string) func(r *http.Request) bool {
	switch allow {
	case "":
		return nil
	case "*":
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Scheme+"://"+u.Host == allow
	}
}

// Stream upgrades the request and writes the current snapshot followed by
// one message per transition.
//
// @Summary      Snapshot stream
// @Tags         session
// @Router       /session/ws [get]
func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}
	defer conn.Close()

	metrics.SnapshotSubscribers.Inc()
	defer metrics.SnapshotSubscribers.Dec()

	updates := make(chan domain.Snapshot, streamBuffer)
	cancel := h.session.Watch(func(s domain.Snapshot) {
		select {
		case updates <- s:
		default:
			// Drop the oldest so the latest state still gets through.
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- s:
			default:
			}
		}
	})
	defer cancel()

	done := make(chan struct{})
	go h.readPump(conn, done)

	if err := h.write(conn, h.session.Snapshot()); err != nil {
		return nil
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case s := <-updates:
			if err := h.write(conn, s); err != nil {
				h.log.Debug().Err(err).Msg("snapshot stream write failed")
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// streamMessage is the envelope of every pushed frame.
type streamMessage struct {
	Event string           `json:"event"`
	Data  snapshotResponse `json:"data"`
}

const snapshotEvent = "session.snapshot"

func (h *StreamHandler) write(conn *websocket.Conn, s domain.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(streamMessage{Event: snapshotEvent, Data: toSnapshotResponse(s)})
}

// readPump discards client messages and closes done when the peer goes away.
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
