package channel

import (
	"testing"

	"chat-relay/errors"
	"github.com/stretchr/testify/require"
)

func TestScope_Name(t *testing.T) {
	req := require.New(t)

	room, err := Room("srv-1", "room-9")
	req.NoError(err)
	req.Equal("room:srv-1:room-9", room.Name())

	dm, err := DM("conv-42")
	req.NoError(err)
	req.Equal("dm:conv-42", dm.Name())

	user, err := User("user-7")
	req.NoError(err)
	req.Equal("user:user-7", user.Name())

	server, err := Server("srv-1")
	req.NoError(err)
	req.Equal("server:srv-1", server.Name())
}

func TestScope_RoundTrip(t *testing.T) {
	mustRoom, _ := Room("S1", "R1")
	mustDM, _ := DM("C1")
	mustUser, _ := User("U1")
	mustServer, _ := Server("S1")

	for _, scope := range []Scope{mustRoom, mustDM, mustUser, mustServer} {
		t.Run(scope.Name(), func(t *testing.T) {
			req := require.New(t)
			parsed, err := Parse(scope.Name())
			req.NoError(err)
			req.Equal(scope, parsed)
		})
	}
}

// Two distinct scopes must never render the same channel string, even when
// their IDs look alike across kinds.
func TestScope_Injective(t *testing.T) {
	req := require.New(t)

	room, _ := Room("A", "B")
	dm, _ := DM("A")
	user, _ := User("A")
	server, _ := Server("A")
	otherRoom, _ := Room("B", "A")

	seen := map[string]Scope{}
	for _, s := range []Scope{room, dm, user, server, otherRoom} {
		prev, dup := seen[s.Name()]
		req.Falsef(dup, "scopes %v and %v share channel %s", prev, s, s.Name())
		seen[s.Name()] = s
	}
}

func TestScope_RejectsMalformedIDs(t *testing.T) {
	req := require.New(t)

	_, err := Room("srv:1", "room-1")
	req.ErrorIs(err, errors.ErrInvalidScope)

	_, err = Room("srv-1", "")
	req.ErrorIs(err, errors.ErrInvalidScope)

	_, err = DM("a:b")
	req.ErrorIs(err, errors.ErrInvalidScope)

	_, err = User("")
	req.ErrorIs(err, errors.ErrInvalidScope)
}

func TestParse_RejectsUnknownForms(t *testing.T) {
	for _, name := range []string{
		"",
		"room",
		"room:only-server",
		"room:s:r:extra",
		"dm:",
		"dm:a:b",
		"user:",
		"topic:abc",
		"server",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(name)
			require.ErrorIs(t, err, errors.ErrInvalidChannel)
		})
	}
}

func TestScope_Accessors(t *testing.T) {
	req := require.New(t)

	room, _ := Room("S1", "R1")
	req.Equal(KindRoom, room.Kind())
	req.Equal("S1", room.ServerID())
	req.Equal("R1", room.RoomID())
	req.Empty(room.UserID())

	dm, _ := DM("C1")
	req.Equal("C1", dm.ConversationID())
	req.Empty(dm.ServerID())
}
