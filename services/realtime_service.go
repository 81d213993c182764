package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/channel"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/realtime"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MessageTarget is the single destination of a message-family event: a room
// or a conversation, decided once at the business-layer boundary. The
// publisher never infers room-vs-dm.
type MessageTarget struct {
	scope channel.Scope
}

func RoomTarget(serverID, roomID string) (MessageTarget, error) {
	scope, err := channel.Room(serverID, roomID)
	if err != nil {
		return MessageTarget{}, err
	}
	return MessageTarget{scope: scope}, nil
}

func ConversationTarget(conversationID string) (MessageTarget, error) {
	scope, err := channel.DM(conversationID)
	if err != nil {
		return MessageTarget{}, err
	}
	return MessageTarget{scope: scope}, nil
}

func (t MessageTarget) Scope() channel.Scope { return t.scope }

// TokenRequest is what the connection endpoint hands to clients: the signed
// credential plus the grant it embeds, so clients can introspect their own
// channel set.
type TokenRequest struct {
	Token      string                         `json:"token"`
	ClientID   string                         `json:"client_id"`
	Capability map[string][]domain.Permission `json:"capability"`
	ExpiresAt  time.Time                      `json:"expires"`
}

type IRealtimeService interface {
	PublishMessageCreated(ctx context.Context, target MessageTarget, msg event.MessagePayload) realtime.PublishOutcome
	PublishMessageUpdated(ctx context.Context, target MessageTarget, msg event.MessagePayload) realtime.PublishOutcome
	PublishMessageDeleted(ctx context.Context, target MessageTarget, messageID, deletedBy string) realtime.PublishOutcome
	PublishReactionAdded(ctx context.Context, target MessageTarget, reaction event.ReactionPayload) realtime.PublishOutcome
	PublishReactionRemoved(ctx context.Context, target MessageTarget, reaction event.ReactionPayload) realtime.PublishOutcome
	PublishTypingStart(ctx context.Context, target MessageTarget, userID, username string) realtime.PublishOutcome
	PublishTypingStop(ctx context.Context, target MessageTarget, userID, username string) realtime.PublishOutcome

	NotifyFriendRequest(ctx context.Context, toUserID, requestID string, from domain.UserSnapshot) realtime.PublishOutcome
	NotifyFriendAccepted(ctx context.Context, toUserID, friendshipID string, by domain.UserSnapshot) realtime.PublishOutcome
	NotifyFriendRemoved(ctx context.Context, toUserID, friendshipID, byUserID string) realtime.PublishOutcome

	IssueConnectionToken(ctx context.Context, userID string) (TokenRequest, error)
	SetUserStatus(ctx context.Context, userID, status string, metadata map[string]any) error
	EnterPresence(ctx context.Context, userID, channelType, channelID string, metadata map[string]any) error
	LeavePresence(ctx context.Context, userID, channelType, channelID string, metadata map[string]any) error
}

// RealtimeService is the narrow surface the CRUD handlers call after their own
// writes have committed. Publish outcomes are values to log, never errors that
// could roll a handler back.
type RealtimeService struct {
	log       *slog.Logger
	publisher *realtime.Publisher
	tracker   *realtime.PresenceTracker
	authority *realtime.TokenAuthority
}

func NewRealtimeService(
	log *slog.Logger,
	publisher *realtime.Publisher,
	tracker *realtime.PresenceTracker,
	authority *realtime.TokenAuthority,
) *RealtimeService {
	return &RealtimeService{log: log, publisher: publisher, tracker: tracker, authority: authority}
}

func (s *RealtimeService) PublishMessageCreated(ctx context.Context, target MessageTarget, msg event.MessagePayload) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.MessageCreated{Message: msg}, target.scope)
}

func (s *RealtimeService) PublishMessageUpdated(ctx context.Context, target MessageTarget, msg event.MessagePayload) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.MessageUpdated{Message: msg}, target.scope)
}

func (s *RealtimeService) PublishMessageDeleted(ctx context.Context, target MessageTarget, messageID, deletedBy string) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.MessageDeleted{MessageID: messageID, DeletedBy: deletedBy}, target.scope)
}

func (s *RealtimeService) PublishReactionAdded(ctx context.Context, target MessageTarget, reaction event.ReactionPayload) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.ReactionAdded{Reaction: reaction}, target.scope)
}

func (s *RealtimeService) PublishReactionRemoved(ctx context.Context, target MessageTarget, reaction event.ReactionPayload) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.ReactionRemoved{Reaction: reaction}, target.scope)
}

func (s *RealtimeService) PublishTypingStart(ctx context.Context, target MessageTarget, userID, username string) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.TypingStart{UserID: userID, Username: username}, target.scope)
}

func (s *RealtimeService) PublishTypingStop(ctx context.Context, target MessageTarget, userID, username string) realtime.PublishOutcome {
	return s.publisher.Publish(ctx, event.TypingStop{UserID: userID, Username: username}, target.scope)
}

func (s *RealtimeService) NotifyFriendRequest(ctx context.Context, toUserID, requestID string, from domain.UserSnapshot) realtime.PublishOutcome {
	return s.publishToUser(ctx, toUserID, event.FriendRequest{RequestID: requestID, From: from})
}

func (s *RealtimeService) NotifyFriendAccepted(ctx context.Context, toUserID, friendshipID string, by domain.UserSnapshot) realtime.PublishOutcome {
	return s.publishToUser(ctx, toUserID, event.FriendAccepted{FriendshipID: friendshipID, By: by})
}

func (s *RealtimeService) NotifyFriendRemoved(ctx context.Context, toUserID, friendshipID, byUserID string) realtime.PublishOutcome {
	return s.publishToUser(ctx, toUserID, event.FriendRemoved{FriendshipID: friendshipID, UserID: byUserID})
}

func (s *RealtimeService) publishToUser(ctx context.Context, userID string, evt event.Event) realtime.PublishOutcome {
	scope, err := channel.User(userID)
	if err != nil {
		return realtime.PublishOutcome{Status: realtime.OutcomeFailed, Err: err}
	}
	return s.publisher.Publish(ctx, evt, scope)
}

func (s *RealtimeService) IssueConnectionToken(ctx context.Context, userID string) (TokenRequest, error) {
	token, grant, err := s.authority.Issue(ctx, userID)
	if err != nil {
		return TokenRequest{}, err
	}
	return TokenRequest{
		Token:      token,
		ClientID:   grant.UserID,
		Capability: grant.Capability,
		ExpiresAt:  grant.ExpiresAt,
	}, nil
}

type statusRequest struct {
	Status string `validate:"required,oneof=online offline away busy"`
}

func (s *RealtimeService) SetUserStatus(ctx context.Context, userID, status string, metadata map[string]any) error {
	if err := validate.Struct(statusRequest{Status: status}); err != nil {
		return fmt.Errorf("%w: %q", errors.ErrUnknownStatus, status)
	}
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return err
	}
	return s.tracker.UpdateStatus(ctx, userID, parsed, metadata)
}

type presenceRequest struct {
	ChannelType string `validate:"required,oneof=room dm server"`
	ChannelID   string `validate:"required"`
}

func (s *RealtimeService) EnterPresence(ctx context.Context, userID, channelType, channelID string, metadata map[string]any) error {
	scope, err := presenceScope(channelType, channelID)
	if err != nil {
		return err
	}
	return s.tracker.EnterChannel(ctx, userID, scope, metadata)
}

func (s *RealtimeService) LeavePresence(ctx context.Context, userID, channelType, channelID string, metadata map[string]any) error {
	scope, err := presenceScope(channelType, channelID)
	if err != nil {
		return err
	}
	return s.tracker.LeaveChannel(ctx, userID, scope, metadata)
}

// presenceScope maps the endpoint's (channel_type, channel_id) pair onto a
// scope. Room presence passes the composite "serverID:roomID" id, as the
// HTTP clients already send it.
func presenceScope(channelType, channelID string) (channel.Scope, error) {
	if err := validate.Struct(presenceRequest{ChannelType: channelType, ChannelID: channelID}); err != nil {
		return channel.Scope{}, fmt.Errorf("%w: %q", errors.ErrInvalidChannelType, channelType)
	}
	switch channel.Kind(channelType) {
	case channel.KindRoom:
		serverID, roomID, ok := strings.Cut(channelID, ":")
		if !ok {
			return channel.Scope{}, fmt.Errorf("%w: room id %q must be serverID:roomID", errors.ErrInvalidScope, channelID)
		}
		return channel.Room(serverID, roomID)
	case channel.KindDM:
		return channel.DM(channelID)
	case channel.KindServer:
		return channel.Server(channelID)
	}
	return channel.Scope{}, fmt.Errorf("%w: %q", errors.ErrInvalidChannelType, channelType)
}
