package event

import (
	"time"

	"chat-relay/domain"
	"github.com/samber/lo"
)

// Event is the closed set of pushes this backend emits. Each kind renders as
// "category.action" on the wire and carries its own payload struct, so adding
// a kind means adding a struct here and wiring it in the services layer.
type Event interface {
	// Kind is the wire event type, e.g. "message.created".
	Kind() string
	// Actor is the originating user ID, or "" for system-originated events.
	Actor() string
	// Data is the envelope's data field.
	Data() any
}

// MessagePayload mirrors what clients render for a message without a CRUD
// round trip. Exactly one of RoomID / ConversationID is set.
type MessagePayload struct {
	ID             string            `json:"id"`
	Content        string            `json:"content"`
	UserID         string            `json:"user_id"`
	Username       string            `json:"username"`
	RoomID         string            `json:"room_id,omitempty"`
	ConversationID string            `json:"conversation_id,omitempty"`
	ParentID       string            `json:"parent_message_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	EditedAt       *time.Time        `json:"edited_at,omitempty"`
	Files          []string          `json:"files"`
	Reactions      []ReactionPayload `json:"reactions"`
	ReplyCount     int               `json:"reply_count"`
}

type ReactionPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

type MessageCreated struct{ Message MessagePayload }

func (e MessageCreated) Kind() string  { return "message.created" }
func (e MessageCreated) Actor() string { return e.Message.UserID }
func (e MessageCreated) Data() any     { return e.Message }

type MessageUpdated struct{ Message MessagePayload }

func (e MessageUpdated) Kind() string  { return "message.updated" }
func (e MessageUpdated) Actor() string { return e.Message.UserID }
func (e MessageUpdated) Data() any     { return e.Message }

type MessageDeleted struct {
	MessageID string
	DeletedBy string
}

func (e MessageDeleted) Kind() string  { return "message.deleted" }
func (e MessageDeleted) Actor() string { return e.DeletedBy }
func (e MessageDeleted) Data() any {
	return map[string]any{"message_id": e.MessageID, "deleted_by": e.DeletedBy}
}

type ReactionAdded struct{ Reaction ReactionPayload }

func (e ReactionAdded) Kind() string  { return "reaction.added" }
func (e ReactionAdded) Actor() string { return e.Reaction.UserID }
func (e ReactionAdded) Data() any     { return e.Reaction }

type ReactionRemoved struct{ Reaction ReactionPayload }

func (e ReactionRemoved) Kind() string  { return "reaction.removed" }
func (e ReactionRemoved) Actor() string { return e.Reaction.UserID }
func (e ReactionRemoved) Data() any     { return e.Reaction }

type TypingStart struct {
	UserID   string
	Username string
}

func (e TypingStart) Kind() string  { return "typing.start" }
func (e TypingStart) Actor() string { return e.UserID }
func (e TypingStart) Data() any {
	return map[string]any{"user_id": e.UserID, "username": e.Username, "action": "start"}
}

type TypingStop struct {
	UserID   string
	Username string
}

func (e TypingStop) Kind() string  { return "typing.stop" }
func (e TypingStop) Actor() string { return e.UserID }
func (e TypingStop) Data() any {
	return map[string]any{"user_id": e.UserID, "username": e.Username, "action": "stop"}
}

type FriendRequest struct {
	RequestID string
	From      domain.UserSnapshot
}

func (e FriendRequest) Kind() string  { return "friend.request" }
func (e FriendRequest) Actor() string { return e.From.ID }
func (e FriendRequest) Data() any {
	return map[string]any{"request_id": e.RequestID, "from": e.From}
}

type FriendAccepted struct {
	FriendshipID string
	By           domain.UserSnapshot
}

func (e FriendAccepted) Kind() string  { return "friend.accepted" }
func (e FriendAccepted) Actor() string { return e.By.ID }
func (e FriendAccepted) Data() any {
	return map[string]any{"friendship_id": e.FriendshipID, "by": e.By}
}

type FriendRemoved struct {
	FriendshipID string
	UserID       string
}

func (e FriendRemoved) Kind() string  { return "friend.removed" }
func (e FriendRemoved) Actor() string { return e.UserID }
func (e FriendRemoved) Data() any {
	return map[string]any{"friendship_id": e.FriendshipID, "user_id": e.UserID}
}

// PresenceChanged fans out to each friend's personal channel. Its wire type
// embeds the status itself ("presence.online", "presence.away", ...).
type PresenceChanged struct {
	Status   domain.UserStatus
	User     domain.UserSnapshot
	LastSeen time.Time
	Metadata map[string]any
}

func (e PresenceChanged) Kind() string  { return "presence." + string(e.Status) }
func (e PresenceChanged) Actor() string { return e.User.ID }

// Data merges the user snapshot with caller metadata; metadata keys win, as
// in the source presence payloads.
func (e PresenceChanged) Data() any {
	base := map[string]any{
		"id":        e.User.ID,
		"username":  e.User.Username,
		"status":    string(e.Status),
		"last_seen": e.LastSeen.UTC().Format(time.RFC3339),
	}
	if e.User.PictureURL != "" {
		base["picture_url"] = e.User.PictureURL
	}
	if e.User.UserType != "" {
		base["user_type"] = e.User.UserType
	}
	return lo.Assign(base, e.Metadata)
}
