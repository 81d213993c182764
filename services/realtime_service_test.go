package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/realtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type serviceFixture struct {
	transport *mocks.MockTransport
	members   *mocks.MockMembershipProvider
	statuses  *mocks.MockIStatusRepository
	service   *RealtimeService
}

func newServiceFixture(t *testing.T, ctrl *gomock.Controller) serviceFixture {
	t.Helper()
	log := slog.Default()
	transport := mocks.NewMockTransport(ctrl)
	members := mocks.NewMockMembershipProvider(ctrl)
	statuses := mocks.NewMockIStatusRepository(ctrl)

	publisher := realtime.NewPublisher(log, transport, time.Second, nil)
	tracker := realtime.NewPresenceTracker(log, publisher, transport, members, statuses, time.Second)
	authority := realtime.NewTokenAuthority(log, members, realtime.NewCapabilityBuilder(time.Hour), transport, time.Second)

	return serviceFixture{
		transport: transport,
		members:   members,
		statuses:  statuses,
		service:   NewRealtimeService(log, publisher, tracker, authority),
	}
}

func TestRealtimeService_PublishMessageCreatedToRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	fix.transport.EXPECT().
		Push(gomock.Any(), "room:S1:R1", "message.created", gomock.Any()).
		Return(nil)

	target, err := RoomTarget("S1", "R1")
	req.NoError(err)

	outcome := fix.service.PublishMessageCreated(context.Background(), target, event.MessagePayload{
		ID: "msg-1", Content: "hi", UserID: "U1", Username: "alice", RoomID: "R1",
	})
	req.True(outcome.Ok())
	req.Equal("room:S1:R1", outcome.Channel)
}

func TestRealtimeService_PublishTypingToConversation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	gomock.InOrder(
		fix.transport.EXPECT().Push(gomock.Any(), "dm:C1", "typing.start", gomock.Any()).Return(nil),
		fix.transport.EXPECT().Push(gomock.Any(), "dm:C1", "typing.stop", gomock.Any()).Return(nil),
	)

	target, err := ConversationTarget("C1")
	req.NoError(err)

	req.True(fix.service.PublishTypingStart(context.Background(), target, "U1", "alice").Ok())
	req.True(fix.service.PublishTypingStop(context.Background(), target, "U1", "alice").Ok())
}

func TestRealtimeService_TargetConstructorsRejectBadIDs(t *testing.T) {
	req := require.New(t)

	_, err := RoomTarget("s:1", "r1")
	req.ErrorIs(err, errors.ErrInvalidScope)

	_, err = ConversationTarget("")
	req.ErrorIs(err, errors.ErrInvalidScope)
}

func TestRealtimeService_FriendNotificationsUsePersonalChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	fix.transport.EXPECT().
		Push(gomock.Any(), "user:U2", "friend.request", gomock.Any()).
		Return(nil)

	outcome := fix.service.NotifyFriendRequest(context.Background(), "U2", "req-1",
		domain.UserSnapshot{ID: "U1", Username: "alice"})
	req.True(outcome.Ok())
}

func TestRealtimeService_IssueConnectionToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	fix.members.EXPECT().ServerMemberships(gomock.Any(), "U1").Return([]string{"S1"}, nil)
	fix.members.EXPECT().RoomMemberships(gomock.Any(), "U1").
		Return([]domain.RoomMembership{{ServerID: "S1", RoomID: "R1"}}, nil)
	fix.members.EXPECT().ConversationMemberships(gomock.Any(), "U1").Return(nil, nil)
	fix.transport.EXPECT().Sign(gomock.Any(), gomock.Any()).Return("tok", nil)

	request, err := fix.service.IssueConnectionToken(context.Background(), "U1")
	req.NoError(err)
	req.Equal("tok", request.Token)
	req.Equal("U1", request.ClientID)
	req.Contains(request.Capability, "room:S1:R1")
	req.False(request.ExpiresAt.IsZero())
}

func TestRealtimeService_SetUserStatusValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	err := fix.service.SetUserStatus(context.Background(), "U1", "sleeping", nil)
	req.ErrorIs(err, errors.ErrUnknownStatus)
}

func TestRealtimeService_EnterPresenceByChannelType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	fix.members.EXPECT().UserSnapshot(gomock.Any(), "U1").
		Return(domain.UserSnapshot{ID: "U1"}, nil)
	fix.transport.EXPECT().
		PresenceEnter(gomock.Any(), "room:S1:R1", "U1", gomock.Any()).
		Return(nil)

	err := fix.service.EnterPresence(context.Background(), "U1", "room", "S1:R1", nil)
	req.NoError(err)
}

func TestRealtimeService_PresenceRejectsUnknownChannelType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	err := fix.service.EnterPresence(context.Background(), "U1", "user", "U2", nil)
	req.ErrorIs(err, errors.ErrInvalidChannelType)

	err = fix.service.LeavePresence(context.Background(), "U1", "broadcast", "X", nil)
	req.ErrorIs(err, errors.ErrInvalidChannelType)
}

func TestRealtimeService_RoomPresenceNeedsCompositeID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	fix := newServiceFixture(t, ctrl)

	err := fix.service.EnterPresence(context.Background(), "U1", "room", "just-a-room", nil)
	req.ErrorIs(err, errors.ErrInvalidScope)
}
