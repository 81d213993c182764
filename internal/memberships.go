package internal

import (
	"context"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

// MembershipStore is an in-memory MembershipProvider for development and the
// end-to-end scenarios. Production deployments point the core at the CRUD
// layer's read side instead.
type MembershipStore struct {
	mu            sync.RWMutex
	servers       map[string][]string
	rooms         map[string][]domain.RoomMembership
	conversations map[string][]string
	friends       map[string][]string
	users         map[string]domain.UserSnapshot
}

func NewMembershipStore() *MembershipStore {
	return &MembershipStore{
		servers:       make(map[string][]string),
		rooms:         make(map[string][]domain.RoomMembership),
		conversations: make(map[string][]string),
		friends:       make(map[string][]string),
		users:         make(map[string]domain.UserSnapshot),
	}
}

func (s *MembershipStore) PutUser(snapshot domain.UserSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[snapshot.ID] = snapshot
}

func (s *MembershipStore) JoinServer(userID, serverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers[userID] = appendUnique(s.servers[userID], serverID)
}

func (s *MembershipStore) JoinRoom(userID, serverID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	membership := domain.RoomMembership{ServerID: serverID, RoomID: roomID}
	for _, existing := range s.rooms[userID] {
		if existing == membership {
			return
		}
	}
	s.rooms[userID] = append(s.rooms[userID], membership)
}

func (s *MembershipStore) JoinConversation(userID, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[userID] = appendUnique(s.conversations[userID], conversationID)
}

// Befriend links both directions; friendship is symmetric in the CRUD model.
func (s *MembershipStore) Befriend(userID, friendID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[userID] = appendUnique(s.friends[userID], friendID)
	s.friends[friendID] = appendUnique(s.friends[friendID], userID)
}

func (s *MembershipStore) ServerMemberships(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.servers[userID]...), nil
}

func (s *MembershipStore) RoomMemberships(_ context.Context, userID string) ([]domain.RoomMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RoomMembership(nil), s.rooms[userID]...), nil
}

func (s *MembershipStore) ConversationMemberships(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.conversations[userID]...), nil
}

func (s *MembershipStore) FriendIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.friends[userID]...), nil
}

func (s *MembershipStore) UserSnapshot(_ context.Context, userID string) (domain.UserSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snapshot, ok := s.users[userID]; ok {
		return snapshot, nil
	}
	return domain.UserSnapshot{ID: userID}, nil
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

var _ contract.MembershipProvider = (*MembershipStore)(nil)
