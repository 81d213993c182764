package test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chat-relay/domain/event"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/realtime"
	"chat-relay/repositories"
	"chat-relay/services"
	"chat-relay/transport"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordingSink collects every envelope delivered to one subscription.
type recordingSink struct {
	mu     sync.Mutex
	frames []deliveredFrame
}

type deliveredFrame struct {
	Channel  string
	Envelope event.Envelope
}

func (s *recordingSink) Consume(_ context.Context, channel string, env event.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, deliveredFrame{Channel: channel, Envelope: env})
	return nil
}

func (s *recordingSink) Frames() []deliveredFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]deliveredFrame(nil), s.frames...)
}

// waitFor polls until the sink holds at least n frames; fan-out is concurrent
// so delivery order across channels is not deterministic.
func waitFor(req *require.Assertions, sink *recordingSink, n int) []deliveredFrame {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if frames := sink.Frames(); len(frames) >= n {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	frames := sink.Frames()
	req.GreaterOrEqual(len(frames), n, "expected %d frames, got %d", n, len(frames))
	return frames
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	defer func() { _ = db.Close() }()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// 1. Wire the full relay in process, on the local transport
	local := transport.NewLocal(log, []byte("integration-signing-key"))
	monitor := observability.NewPublishMonitor()
	publisher := realtime.NewPublisher(log, local, time.Second, monitor)
	memberships := internal.NewMembershipStore()
	statuses := repositories.NewStatusRepository(db, log)
	tracker := realtime.NewPresenceTracker(log, publisher, local, memberships, statuses, time.Second)
	builder := realtime.NewCapabilityBuilder(time.Hour)
	authority := realtime.NewTokenAuthority(log, memberships, builder, local, time.Second)
	service := services.NewRealtimeService(log, publisher, tracker, authority)

	// 2. Two users sharing a room, linked as friends
	const (
		alice    = "alice"
		bob      = "bob"
		serverID = "srv-1"
		roomID   = "general"
	)
	roomChannel := "room:" + serverID + ":" + roomID
	for _, userID := range []string{alice, bob} {
		memberships.JoinServer(userID, serverID)
		memberships.JoinRoom(userID, serverID, roomID)
	}
	memberships.Befriend(alice, bob)

	// 3. Token issuance embeds the scoped grant, which the transport accepts
	token, err := service.IssueConnectionToken(ctx, bob)
	req.NoError(err)
	claims, err := local.Validate(token.Token)
	req.NoError(err)
	req.Equal(bob, claims.ClientID)
	req.NotContains(claims.Capability, "*")
	req.Contains(claims.Capability, roomChannel)
	req.Contains(claims.Capability, "user:"+bob)

	// 4. Subscribe bob the way the websocket handler does, plus a stranger
	// on an unrelated room to prove isolation
	bobSink := &recordingSink{}
	strangerSink := &recordingSink{}
	sessionID := uuid.NewString()
	for channel := range claims.Capability {
		local.Subscribe(channel, sessionID, bobSink)
	}
	local.Subscribe("room:other:lobby", uuid.NewString(), strangerSink)

	// 5. Message flow into the room
	target, err := services.RoomTarget(serverID, roomID)
	req.NoError(err)
	messageID := uuid.NewString()
	outcome := service.PublishMessageCreated(ctx, target, event.MessagePayload{
		ID:       messageID,
		Content:  "hello",
		UserID:   alice,
		Username: alice,
	})
	req.True(outcome.Ok())
	req.Equal(roomChannel, outcome.Channel)

	frames := waitFor(req, bobSink, 1)
	req.Equal(roomChannel, frames[0].Channel)
	req.Equal("message.created", frames[0].Envelope.Type)
	req.NotNil(frames[0].Envelope.UserID)
	req.Equal(alice, *frames[0].Envelope.UserID)

	// 6. Typing indicators ride the same channel
	outcome = service.PublishTypingStart(ctx, target, alice, alice)
	req.True(outcome.Ok())
	frames = waitFor(req, bobSink, 2)
	req.Equal("typing.start", frames[1].Envelope.Type)

	// 7. Status change fans out to the friend's personal channel and survives
	// a tracker restart through the repository
	req.NoError(service.SetUserStatus(ctx, alice, "away", nil))
	frames = waitFor(req, bobSink, 3)
	req.Equal("user:"+bob, frames[2].Channel)
	req.Equal("presence.away", frames[2].Envelope.Type)

	rebuilt := realtime.NewPresenceTracker(log, publisher, local, memberships, statuses, time.Second)
	record, err := rebuilt.Status(alice)
	req.NoError(err)
	req.Equal("away", string(record.Status))

	// 8. Channel presence: enter is idempotent, leave clears it
	req.NoError(service.EnterPresence(ctx, alice, "room", serverID+":"+roomID, nil))
	req.NoError(service.EnterPresence(ctx, alice, "room", serverID+":"+roomID, nil))
	req.Contains(local.Present(roomChannel), alice)
	req.NoError(service.LeavePresence(ctx, alice, "room", serverID+":"+roomID, nil))
	req.NotContains(local.Present(roomChannel), alice)

	// 9. Nothing above ever reached the unrelated room
	req.Empty(strangerSink.Frames())

	// 10. The monitor saw only delivered outcomes
	stats := monitor.Snapshot()
	req.NotZero(stats.Delivered)
	req.Zero(stats.Failed)
}
