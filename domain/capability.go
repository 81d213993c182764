package domain

import "time"

type Permission string

const (
	PermSubscribe Permission = "subscribe"
	PermPublish   Permission = "publish"
)

// RoomMembership carries the server context a room lives in; room channels are
// named by both IDs.
type RoomMembership struct {
	ServerID string
	RoomID   string
}

// Memberships is a user's full membership set at one point in time, as
// reported by the CRUD layer.
type Memberships struct {
	Servers       []string
	Rooms         []RoomMembership
	Conversations []string
}

// CapabilityGrant maps channel names to the permissions a single user holds on
// them, for one token issuance. Grants are built fresh per issuance and never
// mutated; a membership change only takes effect on the next build.
type CapabilityGrant struct {
	UserID     string
	Capability map[string][]Permission
	ExpiresAt  time.Time
}

// Allows reports whether the grant carries perm on the given channel.
func (g CapabilityGrant) Allows(channel string, perm Permission) bool {
	for _, p := range g.Capability[channel] {
		if p == perm {
			return true
		}
	}
	return false
}

func (g CapabilityGrant) Channels() []string {
	channels := make([]string, 0, len(g.Capability))
	for name := range g.Capability {
		channels = append(channels, name)
	}
	return channels
}
