package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-relay/domain/event"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendQueueSize = 64
)

// frame is what clients receive on the wire: the envelope plus the channel it
// was published on, since one connection multiplexes every granted channel.
type frame struct {
	Channel  string         `json:"channel"`
	Envelope event.Envelope `json:"envelope"`
}

// Session pumps envelopes from the local transport to one websocket client.
// It implements contract.EventSink; the handler subscribes it to each channel
// of the validated token's capability map.
type Session struct {
	ID  string
	log *slog.Logger
	ws  *websocket.Conn

	send      chan frame
	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
}

func NewSession(log *slog.Logger, ws *websocket.Conn, onClose func()) *Session {
	return &Session{
		ID:      uuid.NewString(),
		log:     log,
		ws:      ws,
		send:    make(chan frame, sendQueueSize),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

// Consume queues an envelope for the client. A slow client loses envelopes
// rather than stalling the publisher; it will re-sync from the CRUD read path
// on reconnect anyway.
func (s *Session) Consume(ctx context.Context, channel string, env event.Envelope) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	case s.send <- frame{Channel: channel, Envelope: env}:
		return nil
	default:
		return fmt.Errorf("send queue full, %s envelope dropped", env.Type)
	}
}

// WriteLoop drains the send queue onto the socket, pinging on idle. It owns
// all writes to the connection.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case <-s.done:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case f := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteJSON(f); err != nil {
				s.log.Debug("Session write failed", "session", s.ID, "err", err)
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadLoop consumes the connection until the client goes away. Clients don't
// publish over the socket (publishing goes through the HTTP API), so inbound
// payloads are discarded; the loop exists to handle pongs and detect closes.
func (s *Session) ReadLoop() {
	defer s.Close()
	s.ws.SetReadLimit(1 << 16)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.log.Debug("Session read failed", "session", s.ID, "err", err)
			}
			return
		}
	}
}

// Close tears the session down once: signals the write loop, closes the
// socket and runs the handler's cleanup (unsubscribe, presence drop).
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.ws.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
}
