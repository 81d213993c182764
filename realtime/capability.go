package realtime

import (
	"time"

	"chat-relay/domain"
	"chat-relay/domain/channel"
	"github.com/samber/lo"
)

// DefaultGrantTTL matches the transport-side token lifetime of one hour.
const DefaultGrantTTL = time.Hour

// CapabilityBuilder turns a user's membership set into the exact channel
// grants a connection token may carry. Grants are built fresh on every
// issuance; there is no live revocation, a membership change is picked up by
// the next build.
type CapabilityBuilder struct {
	ttl time.Duration
	now func() time.Time
}

func NewCapabilityBuilder(ttl time.Duration) *CapabilityBuilder {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &CapabilityBuilder{ttl: ttl, now: time.Now}
}

// Build derives the grant map:
//   - the personal channel is always subscribe-only (only the backend pushes there)
//   - room and dm channels get subscribe+publish
//   - server channels are subscribe-only (server-wide broadcasts are system-originated)
//
// Output is deterministic for identical inputs. A malformed membership ID is a
// structural error from the CRUD layer and is surfaced, never skipped.
func (b *CapabilityBuilder) Build(userID string, m domain.Memberships) (domain.CapabilityGrant, error) {
	personal, err := channel.User(userID)
	if err != nil {
		return domain.CapabilityGrant{}, err
	}

	capability := map[string][]domain.Permission{
		personal.Name(): {domain.PermSubscribe},
	}

	for _, serverID := range lo.Uniq(m.Servers) {
		scope, err := channel.Server(serverID)
		if err != nil {
			return domain.CapabilityGrant{}, err
		}
		capability[scope.Name()] = []domain.Permission{domain.PermSubscribe}
	}

	for _, room := range lo.Uniq(m.Rooms) {
		scope, err := channel.Room(room.ServerID, room.RoomID)
		if err != nil {
			return domain.CapabilityGrant{}, err
		}
		capability[scope.Name()] = []domain.Permission{domain.PermSubscribe, domain.PermPublish}
	}

	for _, conversationID := range lo.Uniq(m.Conversations) {
		scope, err := channel.DM(conversationID)
		if err != nil {
			return domain.CapabilityGrant{}, err
		}
		capability[scope.Name()] = []domain.Permission{domain.PermSubscribe, domain.PermPublish}
	}

	return domain.CapabilityGrant{
		UserID:     userID,
		Capability: capability,
		ExpiresAt:  b.now().Add(b.ttl),
	}, nil
}
