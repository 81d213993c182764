package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"github.com/golang-jwt/jwt/v5"
)

// CapabilityClaims is the payload of a connection token: the capability map
// built at issuance, verbatim, plus the standard expiry fields.
type CapabilityClaims struct {
	ClientID   string                         `json:"client_id"`
	Capability map[string][]domain.Permission `json:"capability"`
	jwt.RegisteredClaims
}

// Local is an in-process realtime transport: a per-channel registry of
// subscriber sinks with best-effort delivery. It stands in for the hosted
// provider in development and in the end-to-end tests, and signs connection
// tokens itself with an HS256 key.
//
// Local is safe for concurrent use by multiple goroutines.
type Local struct {
	log        *slog.Logger
	signingKey []byte

	mu          sync.RWMutex
	subscribers map[string]map[string]contract.EventSink // channel -> sessionID -> sink
	present     map[string]map[string]map[string]any     // channel -> userID -> data
}

func NewLocal(log *slog.Logger, signingKey []byte) *Local {
	return &Local{
		log:         log,
		signingKey:  signingKey,
		subscribers: make(map[string]map[string]contract.EventSink),
		present:     make(map[string]map[string]map[string]any),
	}
}

// Subscribe attaches a session's sink to a channel. The same session may be
// attached to any number of channels; its sink is keyed by session ID so a
// disconnect can detach everything in one sweep.
func (t *Local) Subscribe(channel, sessionID string, sink contract.EventSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.subscribers[channel]; !ok {
		t.subscribers[channel] = make(map[string]contract.EventSink)
	}
	t.subscribers[channel][sessionID] = sink
}

// Unsubscribe detaches a session from every channel it was attached to.
func (t *Local) Unsubscribe(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for channel, sinks := range t.subscribers {
		delete(sinks, sessionID)
		if len(sinks) == 0 {
			delete(t.subscribers, channel)
		}
	}
}

func (t *Local) Push(ctx context.Context, channel, eventType string, envelope event.Envelope) error {
	t.deliver(ctx, channel, envelope)
	return nil
}

// deliver fans an envelope out to the channel's current sinks. A sink that
// cannot keep up loses the envelope; delivery is best effort, never blocking.
func (t *Local) deliver(ctx context.Context, channel string, envelope event.Envelope) {
	t.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(t.subscribers[channel]))
	for _, sink := range t.subscribers[channel] {
		sinks = append(sinks, sink)
	}
	t.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Consume(ctx, channel, envelope); err != nil {
			t.log.Debug("Subscriber lost envelope", "channel", channel, "type", envelope.Type, "err", err)
		}
	}
}

// Sign wraps the grant into a JWT. The capability map goes in untouched; the
// websocket handler replays it as the session's subscription set.
func (t *Local) Sign(ctx context.Context, grant domain.CapabilityGrant) (string, error) {
	claims := &CapabilityClaims{
		ClientID:   grant.UserID,
		Capability: grant.Capability,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(grant.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-relay",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// Validate parses and checks the signature and expiry of a connection token.
func (t *Local) Validate(tokenString string) (*CapabilityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CapabilityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CapabilityClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

func (t *Local) PresenceEnter(ctx context.Context, channel, userID string, data map[string]any) error {
	t.mu.Lock()
	if _, ok := t.present[channel]; !ok {
		t.present[channel] = make(map[string]map[string]any)
	}
	t.present[channel][userID] = data
	t.mu.Unlock()

	t.deliver(ctx, channel, presenceEnvelope("presence.enter", userID, data))
	return nil
}

func (t *Local) PresenceLeave(ctx context.Context, channel, userID string, data map[string]any) error {
	t.mu.Lock()
	delete(t.present[channel], userID)
	if len(t.present[channel]) == 0 {
		delete(t.present, channel)
	}
	t.mu.Unlock()

	t.deliver(ctx, channel, presenceEnvelope("presence.leave", userID, data))
	return nil
}

// Present lists the users currently present on a channel.
func (t *Local) Present(channel string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	users := make([]string, 0, len(t.present[channel]))
	for userID := range t.present[channel] {
		users = append(users, userID)
	}
	return users
}

// Subscribers reports how many sinks a channel currently has, for the debug
// endpoint.
func (t *Local) Subscribers(channel string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers[channel])
}

func presenceEnvelope(kind, userID string, data map[string]any) event.Envelope {
	return event.Envelope{
		Type:      kind,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		UserID:    &userID,
	}
}

var _ contract.Transport = (*Local)(nil)

// ErrSessionClosed reports delivery to a sink whose connection is gone.
var ErrSessionClosed = fmt.Errorf("session closed")
