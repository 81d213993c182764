package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/channel"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// PresenceTracker keeps the only mutable state of this core: the per-user
// status board and the per-(user, channel) presence records. Operations for
// the same user are serialized end-to-end through that user's operation lock;
// different users never contend.
type PresenceTracker struct {
	log       *slog.Logger
	publisher *Publisher
	transport contract.Transport
	members   contract.MembershipProvider
	statuses  StatusStore
	timeout   time.Duration

	mu    sync.RWMutex
	users map[string]*userPresence

	now func() time.Time
}

// StatusStore is the durable side of the status board (see repositories).
type StatusStore interface {
	SaveStatus(record domain.StatusRecord) error
	GetStatus(userID string) (domain.StatusRecord, error)
}

type userPresence struct {
	// ops serializes whole operations for one user: the in-memory write, the
	// durable save and the transport mirror happen as one sequence, so two
	// concurrent calls cannot persist or mirror in inverted order.
	ops sync.Mutex

	mu       sync.Mutex
	status   domain.UserStatus
	lastSeen time.Time
	channels map[string]domain.PresenceRecord
}

func NewPresenceTracker(
	log *slog.Logger,
	publisher *Publisher,
	transport contract.Transport,
	members contract.MembershipProvider,
	statuses StatusStore,
	timeout time.Duration,
) *PresenceTracker {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &PresenceTracker{
		log:       log,
		publisher: publisher,
		transport: transport,
		members:   members,
		statuses:  statuses,
		timeout:   timeout,
		users:     make(map[string]*userPresence),
		now:       time.Now,
	}
}

func (t *PresenceTracker) user(userID string) *userPresence {
	t.mu.RLock()
	entry, ok := t.users[userID]
	t.mu.RUnlock()
	if ok {
		return entry
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok = t.users[userID]; !ok {
		entry = &userPresence{channels: make(map[string]domain.PresenceRecord)}
		t.users[userID] = entry
	}
	return entry
}

// UpdateStatus records the user's status, then fans the change out to every
// friend's personal channel. The call succeeds once the status is recorded;
// fan-out delivery is best effort and only logged.
func (t *PresenceTracker) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus, metadata map[string]any) error {
	entry := t.user(userID)
	entry.ops.Lock()
	defer entry.ops.Unlock()

	lastSeen := t.now().UTC()
	entry.mu.Lock()
	entry.status = status
	entry.lastSeen = lastSeen
	entry.mu.Unlock()

	if t.statuses != nil {
		record := domain.StatusRecord{UserID: userID, Status: status, LastSeen: lastSeen}
		if err := t.statuses.SaveStatus(record); err != nil {
			return fmt.Errorf("persisting status for %s: %w", userID, err)
		}
	}

	friends, err := t.members.FriendIDs(ctx, userID)
	if err != nil {
		t.log.Warn("Status recorded but friend lookup failed, skipping fan-out",
			"user", userID, "status", status, "err", err)
		return nil
	}
	if len(friends) == 0 {
		return nil
	}

	snapshot := t.snapshot(ctx, userID)
	evt := event.PresenceChanged{
		Status:   status,
		User:     snapshot,
		LastSeen: lastSeen,
		Metadata: metadata,
	}

	outcomes := t.publisher.FanOutToUsers(ctx, evt, friends)
	t.log.Info("Presence change fanned out",
		"user", userID, "status", status,
		"friends", len(friends), "delivered", DeliveredCount(outcomes))
	return nil
}

// Status reads the in-memory board, falling back to the durable store for
// users not seen since the last restart.
func (t *PresenceTracker) Status(userID string) (domain.StatusRecord, error) {
	entry := t.user(userID)
	entry.mu.Lock()
	status, lastSeen := entry.status, entry.lastSeen
	entry.mu.Unlock()

	if status != "" {
		return domain.StatusRecord{UserID: userID, Status: status, LastSeen: lastSeen}, nil
	}
	if t.statuses != nil {
		return t.statuses.GetStatus(userID)
	}
	return domain.StatusRecord{}, fmt.Errorf("%w: %s", errors.ErrStatusNotFound, userID)
}

// EnterChannel records channel-level presence. Entering an already-entered
// channel refreshes the record instead of duplicating it. Personal channels
// have no presence concept and are rejected.
func (t *PresenceTracker) EnterChannel(ctx context.Context, userID string, scope channel.Scope, metadata map[string]any) error {
	if err := presenceScope(scope); err != nil {
		return err
	}
	name := scope.Name()

	entry := t.user(userID)
	entry.ops.Lock()
	defer entry.ops.Unlock()

	enteredAt := t.now().UTC()
	entry.mu.Lock()
	entry.channels[name] = domain.PresenceRecord{
		UserID:    userID,
		Channel:   name,
		EnteredAt: enteredAt,
		Metadata:  metadata,
	}
	entry.mu.Unlock()

	t.transportPresence(ctx, name, userID, enteredAt, metadata, true)
	return nil
}

// LeaveChannel removes the presence record if present. Leaving a channel that
// was never entered is a successful no-op: leave signals from flaky transports
// arrive duplicated and out of order.
func (t *PresenceTracker) LeaveChannel(ctx context.Context, userID string, scope channel.Scope, metadata map[string]any) error {
	if err := presenceScope(scope); err != nil {
		return err
	}
	name := scope.Name()

	entry := t.user(userID)
	entry.ops.Lock()
	defer entry.ops.Unlock()

	entry.mu.Lock()
	_, present := entry.channels[name]
	delete(entry.channels, name)
	entry.mu.Unlock()

	if !present {
		t.log.Debug("Leave for channel never entered", "user", userID, "channel", name)
		return nil
	}

	t.transportPresence(ctx, name, userID, t.now().UTC(), metadata, false)
	return nil
}

// LeaveAll clears every presence record of a user. Called when the transport
// reports a connection-level disconnect.
func (t *PresenceTracker) LeaveAll(ctx context.Context, userID string) {
	entry := t.user(userID)
	entry.ops.Lock()
	defer entry.ops.Unlock()

	entry.mu.Lock()
	channels := make([]string, 0, len(entry.channels))
	for name := range entry.channels {
		channels = append(channels, name)
	}
	entry.channels = make(map[string]domain.PresenceRecord)
	entry.mu.Unlock()

	at := t.now().UTC()
	for _, name := range channels {
		t.transportPresence(ctx, name, userID, at, nil, false)
	}
}

// Entered reports whether the user currently holds a presence record on the
// scope's channel.
func (t *PresenceTracker) Entered(userID string, scope channel.Scope) bool {
	entry := t.user(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	_, ok := entry.channels[scope.Name()]
	return ok
}

func presenceScope(scope channel.Scope) error {
	switch scope.Kind() {
	case channel.KindRoom, channel.KindDM, channel.KindServer:
		return nil
	case channel.KindUser:
		return fmt.Errorf("%w: user channels have no presence", errors.ErrInvalidChannelType)
	}
	return fmt.Errorf("%w: %q", errors.ErrInvalidChannelType, scope.Kind())
}

// transportPresence mirrors the local record on the transport, best effort.
// The local record is authoritative for this core; a transport failure is
// logged and swallowed.
func (t *PresenceTracker) transportPresence(ctx context.Context, name, userID string, at time.Time, metadata map[string]any, enter bool) {
	if t.transport == nil {
		t.log.Warn("Realtime transport not configured, presence not mirrored",
			"user", userID, "channel", name)
		return
	}

	data := map[string]any{"id": userID}
	snapshot := t.snapshot(ctx, userID)
	if snapshot.Username != "" {
		data["username"] = snapshot.Username
	}
	if enter {
		data["entered_at"] = at.Format(time.RFC3339)
	} else {
		data["left_at"] = at.Format(time.RFC3339)
	}
	for k, v := range metadata {
		data[k] = v
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var err error
	if enter {
		err = t.transport.PresenceEnter(callCtx, name, userID, data)
	} else {
		err = t.transport.PresenceLeave(callCtx, name, userID, data)
	}
	if err != nil {
		t.log.Warn("Transport presence call failed",
			"user", userID, "channel", name, "enter", enter, "err", err)
	}
}

// snapshot pulls the user's display data for presence payloads, degrading to
// a bare ID when the CRUD layer is unreachable.
func (t *PresenceTracker) snapshot(ctx context.Context, userID string) domain.UserSnapshot {
	snapshot, err := t.members.UserSnapshot(ctx, userID)
	if err != nil {
		t.log.Debug("User snapshot lookup failed", "user", userID, "err", err)
		return domain.UserSnapshot{ID: userID}
	}
	return snapshot
}
