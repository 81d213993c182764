//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// Transport is the external realtime provider. Every method is a network call:
// callers bound it with a context timeout and treat failures as outcomes, not
// as errors to propagate into the triggering business operation.
type Transport interface {
	// Push delivers one envelope on a channel under the given wire event type.
	Push(ctx context.Context, channel, eventType string, envelope event.Envelope) error
	// Sign wraps a capability grant into a credential the transport validates
	// on connection. The grant is embedded exactly: never widened or narrowed.
	Sign(ctx context.Context, grant domain.CapabilityGrant) (string, error)
	PresenceEnter(ctx context.Context, channel, userID string, data map[string]any) error
	PresenceLeave(ctx context.Context, channel, userID string, data map[string]any) error
}

// MembershipProvider is the CRUD layer's read side. Membership sets are pulled
// fresh at token issuance and at status fan-out; this core never caches them.
type MembershipProvider interface {
	ServerMemberships(ctx context.Context, userID string) ([]string, error)
	RoomMemberships(ctx context.Context, userID string) ([]domain.RoomMembership, error)
	ConversationMemberships(ctx context.Context, userID string) ([]string, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	UserSnapshot(ctx context.Context, userID string) (domain.UserSnapshot, error)
}

// EventSink receives envelopes for one subscriber of the in-process transport.
type EventSink interface {
	Consume(ctx context.Context, channel string, env event.Envelope) error
}
