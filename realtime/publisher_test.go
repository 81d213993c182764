package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain/channel"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/observability"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func roomScope(t *testing.T, serverID, roomID string) channel.Scope {
	t.Helper()
	scope, err := channel.Room(serverID, roomID)
	require.NoError(t, err)
	return scope
}

func TestPublisher_Delivered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	transport := mocks.NewMockTransport(ctrl)
	publisher := NewPublisher(slog.Default(), transport, time.Second, nil)

	var pushed event.Envelope
	transport.EXPECT().
		Push(gomock.Any(), "room:S1:R1", "message.created", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, env event.Envelope) error {
			pushed = env
			return nil
		}).
		Times(1)

	evt := event.MessageCreated{Message: event.MessagePayload{
		ID: "msg-1", UserID: "U1", Username: "alice", RoomID: "R1",
	}}
	outcome := publisher.Publish(context.Background(), evt, roomScope(t, "S1", "R1"))

	req.Equal(OutcomeDelivered, outcome.Status)
	req.True(outcome.Ok())
	req.Equal("room:S1:R1", outcome.Channel)
	req.Equal("message.created", pushed.Type)
	req.NotNil(pushed.UserID)
	req.Equal("U1", *pushed.UserID)
	req.NotEmpty(pushed.Timestamp)
}

func TestPublisher_TransportNotConfigured(t *testing.T) {
	req := require.New(t)
	publisher := NewPublisher(slog.Default(), nil, time.Second, nil)

	outcome := publisher.Publish(context.Background(),
		event.TypingStart{UserID: "U1"}, roomScope(t, "S1", "R1"))

	req.Equal(OutcomeUnavailable, outcome.Status)
	req.ErrorIs(outcome.Err, errors.ErrTransportUnavailable)
}

func TestPublisher_TransportRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("channel quota exceeded"))

	publisher := NewPublisher(slog.Default(), transport, time.Second, nil)
	outcome := publisher.Publish(context.Background(),
		event.TypingStop{UserID: "U1"}, roomScope(t, "S1", "R1"))

	req.Equal(OutcomeFailed, outcome.Status)
	req.ErrorIs(outcome.Err, errors.ErrPublishRejected)
}

// A panicking transport client must never unwind into the caller: the business
// operation that triggered the publish has already committed.
func TestPublisher_TransportPanicIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, event.Envelope) error {
			panic("client library bug")
		})

	publisher := NewPublisher(slog.Default(), transport, time.Second, nil)

	var outcome PublishOutcome
	req.NotPanics(func() {
		outcome = publisher.Publish(context.Background(),
			event.TypingStart{UserID: "U1"}, roomScope(t, "S1", "R1"))
	})
	req.Equal(OutcomeFailed, outcome.Status)
}

func TestPublisher_ZeroScopeNeverReachesTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	// No EXPECT: any Push call fails the test.
	transport := mocks.NewMockTransport(ctrl)
	publisher := NewPublisher(slog.Default(), transport, time.Second, nil)

	outcome := publisher.Publish(context.Background(),
		event.TypingStart{UserID: "U1"}, channel.Scope{})

	req.Equal(OutcomeFailed, outcome.Status)
	req.ErrorIs(outcome.Err, errors.ErrInvalidScope)
}

func TestPublisher_TimeoutIsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string, _ event.Envelope) error {
			<-ctx.Done()
			return ctx.Err()
		})

	publisher := NewPublisher(slog.Default(), transport, 10*time.Millisecond, nil)
	outcome := publisher.Publish(context.Background(),
		event.TypingStart{UserID: "U1"}, roomScope(t, "S1", "R1"))

	req.Equal(OutcomeUnavailable, outcome.Status)
	req.ErrorIs(outcome.Err, errors.ErrTransportUnavailable)
}

func TestPublisher_FanOutPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().
		Push(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name, _ string, _ event.Envelope) error {
			if name == "user:F2" {
				return fmt.Errorf("subscriber gone")
			}
			return nil
		}).
		Times(3)

	monitor := observability.NewPublishMonitor()
	publisher := NewPublisher(slog.Default(), transport, time.Second, monitor)

	outcomes := publisher.FanOutToUsers(context.Background(),
		event.FriendAccepted{FriendshipID: "fr-1"}, []string{"F1", "F2", "F3"})

	req.Len(outcomes, 3)
	req.Equal(2, DeliveredCount(outcomes))

	stats := monitor.Snapshot()
	req.EqualValues(2, stats.Delivered)
	req.EqualValues(1, stats.Failed)
	req.EqualValues(1, stats.FanOuts)
	req.EqualValues(3, stats.Recipients)
}

func TestPublisher_FanOutDeduplicatesRecipients(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().
		Push(gomock.Any(), "user:F1", gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	publisher := NewPublisher(slog.Default(), transport, time.Second, nil)
	outcomes := publisher.FanOutToUsers(context.Background(),
		event.FriendRemoved{FriendshipID: "fr-1", UserID: "U1"}, []string{"F1", "F1"})

	req.Len(outcomes, 1)
}
