package realtime

import (
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
	"github.com/stretchr/testify/require"
)

func TestCapabilityBuilder_EmptyMemberships(t *testing.T) {
	req := require.New(t)
	builder := NewCapabilityBuilder(time.Hour)

	grant, err := builder.Build("U1", domain.Memberships{})
	req.NoError(err)
	req.Equal("U1", grant.UserID)
	req.Len(grant.Capability, 1)
	req.Equal([]domain.Permission{domain.PermSubscribe}, grant.Capability["user:U1"])
}

func TestCapabilityBuilder_FullMembershipSet(t *testing.T) {
	req := require.New(t)
	builder := NewCapabilityBuilder(time.Hour)

	grant, err := builder.Build("U1", domain.Memberships{
		Servers:       []string{"S1"},
		Rooms:         []domain.RoomMembership{{ServerID: "S1", RoomID: "R1"}},
		Conversations: []string{"C1"},
	})
	req.NoError(err)

	req.Len(grant.Capability, 4)
	req.Equal([]domain.Permission{domain.PermSubscribe}, grant.Capability["user:U1"])
	req.Equal([]domain.Permission{domain.PermSubscribe}, grant.Capability["server:S1"])
	req.Equal([]domain.Permission{domain.PermSubscribe, domain.PermPublish}, grant.Capability["room:S1:R1"])
	req.Equal([]domain.Permission{domain.PermSubscribe, domain.PermPublish}, grant.Capability["dm:C1"])

	// The superseded catch-all grant must never come back.
	req.NotContains(grant.Capability, "*")
}

func TestCapabilityBuilder_Deterministic(t *testing.T) {
	req := require.New(t)
	builder := NewCapabilityBuilder(time.Hour)

	memberships := domain.Memberships{
		Servers: []string{"S2", "S1", "S1"},
		Rooms: []domain.RoomMembership{
			{ServerID: "S1", RoomID: "R2"},
			{ServerID: "S1", RoomID: "R1"},
			{ServerID: "S1", RoomID: "R1"},
		},
		Conversations: []string{"C1", "C1"},
	}

	first, err := builder.Build("U1", memberships)
	req.NoError(err)
	second, err := builder.Build("U1", memberships)
	req.NoError(err)
	req.Equal(first.Capability, second.Capability)

	// Duplicated memberships collapse into single grants.
	req.Len(first.Capability, 6)
}

func TestCapabilityBuilder_Expiry(t *testing.T) {
	req := require.New(t)
	builder := NewCapabilityBuilder(time.Hour)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	builder.now = func() time.Time { return at }

	grant, err := builder.Build("U1", domain.Memberships{})
	req.NoError(err)
	req.Equal(at.Add(time.Hour), grant.ExpiresAt)
}

func TestCapabilityBuilder_RejectsMalformedMembershipIDs(t *testing.T) {
	req := require.New(t)
	builder := NewCapabilityBuilder(time.Hour)

	_, err := builder.Build("U1", domain.Memberships{Servers: []string{"bad:id"}})
	req.ErrorIs(err, errors.ErrInvalidScope)

	_, err = builder.Build("U1", domain.Memberships{Conversations: []string{""}})
	req.ErrorIs(err, errors.ErrInvalidScope)

	_, err = builder.Build("no:good", domain.Memberships{})
	req.ErrorIs(err, errors.ErrInvalidScope)
}

func TestCapabilityGrant_Allows(t *testing.T) {
	req := require.New(t)
	builder := NewCapabilityBuilder(time.Hour)

	grant, err := builder.Build("U1", domain.Memberships{
		Rooms: []domain.RoomMembership{{ServerID: "S1", RoomID: "R1"}},
	})
	req.NoError(err)

	req.True(grant.Allows("room:S1:R1", domain.PermPublish))
	req.True(grant.Allows("user:U1", domain.PermSubscribe))
	req.False(grant.Allows("user:U1", domain.PermPublish))
	req.False(grant.Allows("room:S1:R2", domain.PermSubscribe))
}
