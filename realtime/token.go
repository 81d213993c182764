package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
)

// TokenAuthority issues connection credentials. It pulls the user's current
// memberships, builds the capability grant and delegates signing to the
// transport. Membership lookups failing here are structural errors and are
// surfaced, unlike publish failures.
type TokenAuthority struct {
	log       *slog.Logger
	members   contract.MembershipProvider
	builder   *CapabilityBuilder
	transport contract.Transport
	timeout   time.Duration
}

func NewTokenAuthority(
	log *slog.Logger,
	members contract.MembershipProvider,
	builder *CapabilityBuilder,
	transport contract.Transport,
	timeout time.Duration,
) *TokenAuthority {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &TokenAuthority{log: log, members: members, builder: builder, transport: transport, timeout: timeout}
}

// Issue builds a fresh grant from current memberships and returns the signed
// credential together with the grant it embeds.
func (a *TokenAuthority) Issue(ctx context.Context, userID string) (string, domain.CapabilityGrant, error) {
	memberships, err := a.memberships(ctx, userID)
	if err != nil {
		return "", domain.CapabilityGrant{}, err
	}

	grant, err := a.builder.Build(userID, memberships)
	if err != nil {
		return "", domain.CapabilityGrant{}, err
	}

	if a.transport == nil {
		return "", domain.CapabilityGrant{}, errors.ErrTransportUnavailable
	}

	signCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	token, err := a.transport.Sign(signCtx, grant)
	if err != nil {
		a.log.Error("Transport signing failed", "user", userID, "err", err)
		return "", domain.CapabilityGrant{}, fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}

	a.log.Debug("Connection token issued",
		"user", userID, "channels", len(grant.Capability), "expires", grant.ExpiresAt)
	return token, grant, nil
}

func (a *TokenAuthority) memberships(ctx context.Context, userID string) (domain.Memberships, error) {
	servers, err := a.members.ServerMemberships(ctx, userID)
	if err != nil {
		return domain.Memberships{}, fmt.Errorf("server memberships for %s: %w", userID, err)
	}
	rooms, err := a.members.RoomMemberships(ctx, userID)
	if err != nil {
		return domain.Memberships{}, fmt.Errorf("room memberships for %s: %w", userID, err)
	}
	conversations, err := a.members.ConversationMemberships(ctx, userID)
	if err != nil {
		return domain.Memberships{}, fmt.Errorf("conversation memberships for %s: %w", userID, err)
	}
	return domain.Memberships{Servers: servers, Rooms: rooms, Conversations: conversations}, nil
}
