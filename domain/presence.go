package domain

import (
	"fmt"
	"time"

	"chat-relay/errors"
)

// UserStatus is a last-write-wins status board value, not a lifecycle state:
// any status may follow any other.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusAway    UserStatus = "away"
	StatusBusy    UserStatus = "busy"
)

func ParseStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case StatusOnline, StatusOffline, StatusAway, StatusBusy:
		return UserStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnknownStatus, s)
}

// UserSnapshot is the user data carried inside presence payloads, so that
// recipients can render the originator without a CRUD round trip.
type UserSnapshot struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	PictureURL string `json:"picture_url,omitempty"`
	UserType   string `json:"user_type,omitempty"`
}

// PresenceRecord tracks a user's attachment to a single channel.
type PresenceRecord struct {
	UserID    string
	Channel   string
	EnteredAt time.Time
	Metadata  map[string]any
}

// StatusRecord is the durable part of a user's presence: the current status
// and when the user was last seen.
type StatusRecord struct {
	UserID   string
	Status   UserStatus
	LastSeen time.Time
}
