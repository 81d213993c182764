package channel

import (
	"fmt"
	"strings"

	"chat-relay/errors"
)

type Kind string

const (
	KindRoom   Kind = "room"
	KindDM     Kind = "dm"
	KindUser   Kind = "user"
	KindServer Kind = "server"
)

// Scope identifies a realtime topic: a room inside a server, a direct message
// conversation, a user's personal channel, or a server-wide channel.
// The zero value is not a valid scope; use the constructors, which reject IDs
// that would make the canonical string ambiguous.
type Scope struct {
	kind Kind
	// first is the serverID for room/server scopes, the conversationID for dm,
	// the userID for user. second is only set for room scopes (the roomID).
	first  string
	second string
}

func Room(serverID, roomID string) (Scope, error) {
	if err := validateID(serverID); err != nil {
		return Scope{}, err
	}
	if err := validateID(roomID); err != nil {
		return Scope{}, err
	}
	return Scope{kind: KindRoom, first: serverID, second: roomID}, nil
}

func DM(conversationID string) (Scope, error) {
	if err := validateID(conversationID); err != nil {
		return Scope{}, err
	}
	return Scope{kind: KindDM, first: conversationID}, nil
}

func User(userID string) (Scope, error) {
	if err := validateID(userID); err != nil {
		return Scope{}, err
	}
	return Scope{kind: KindUser, first: userID}, nil
}

func Server(serverID string) (Scope, error) {
	if err := validateID(serverID); err != nil {
		return Scope{}, err
	}
	return Scope{kind: KindServer, first: serverID}, nil
}

// validateID rejects IDs that are empty or contain the channel delimiter.
// An ID with ':' inside would collide with another scope's canonical string.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", errors.ErrInvalidScope)
	}
	if strings.Contains(id, ":") {
		return fmt.Errorf("%w: id %q contains ':'", errors.ErrInvalidScope, id)
	}
	return nil
}

func (s Scope) Kind() Kind { return s.kind }

func (s Scope) ServerID() string {
	if s.kind == KindRoom || s.kind == KindServer {
		return s.first
	}
	return ""
}

func (s Scope) RoomID() string {
	if s.kind == KindRoom {
		return s.second
	}
	return ""
}

func (s Scope) ConversationID() string {
	if s.kind == KindDM {
		return s.first
	}
	return ""
}

func (s Scope) UserID() string {
	if s.kind == KindUser {
		return s.first
	}
	return ""
}

// Name renders the canonical channel string. The forms are fixed: the external
// transport's ACL rules match on these exact strings.
func (s Scope) Name() string {
	if s.kind == KindRoom {
		return fmt.Sprintf("room:%s:%s", s.first, s.second)
	}
	return fmt.Sprintf("%s:%s", s.kind, s.first)
}

// Parse is the inverse of Name. It only accepts the four canonical forms;
// anything else is ErrInvalidChannel.
func Parse(name string) (Scope, error) {
	parts := strings.Split(name, ":")
	switch Kind(parts[0]) {
	case KindRoom:
		if len(parts) == 3 && parts[1] != "" && parts[2] != "" {
			return Scope{kind: KindRoom, first: parts[1], second: parts[2]}, nil
		}
	case KindDM:
		if len(parts) == 2 && parts[1] != "" {
			return Scope{kind: KindDM, first: parts[1]}, nil
		}
	case KindUser:
		if len(parts) == 2 && parts[1] != "" {
			return Scope{kind: KindUser, first: parts[1]}, nil
		}
	case KindServer:
		if len(parts) == 2 && parts[1] != "" {
			return Scope{kind: KindServer, first: parts[1]}, nil
		}
	}
	return Scope{}, fmt.Errorf("%w: %q", errors.ErrInvalidChannel, name)
}
