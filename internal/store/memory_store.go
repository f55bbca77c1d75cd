package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

// MemoryStore is an in-memory Store for tests and single-node development.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	rooms    map[string]domain.Room
	messages []domain.Message
	directs  []domain.DirectMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		rooms: make(map[string]domain.Room),
	}
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	out := r
	out.Participants = append([]string(nil), r.Participants...)
	return &out, nil
}

func (s *MemoryStore) EnsureGeneralRoom(ctx context.Context, name string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if r.Name == name {
			out := r
			return &out, nil
		}
	}

	room := domain.Room{
		ID:          uuid.New().String(),
		Name:        name,
		Description: "General chat room for all users",
		CreatedAt:   time.Now().UTC(),
	}
	s.rooms[room.ID] = room
	out := room
	return &out, nil
}

func (s *MemoryStore) AddParticipant(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if r.HasParticipant(userID) {
		return nil
	}
	r.Participants = append(r.Participants, userID)
	s.rooms[roomID] = r
	return nil
}

func (s *MemoryStore) SaveRoomMessage(ctx context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryStore) ListRoomMessages(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	var out []domain.Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *MemoryStore) SaveDirectMessage(ctx context.Context, msg *domain.DirectMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.directs = append(s.directs, *msg)
	return nil
}

func (s *MemoryStore) ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]domain.DirectMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	var out []domain.DirectMessage
	for _, m := range s.directs {
		if (m.SenderID == userA && m.RecipientID == userB) ||
			(m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for i := range s.directs {
		m := &s.directs[i]
		if m.RecipientID == recipientID && m.SenderID == senderID && !m.Read {
			m.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *MemoryStore) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.directs {
		if m.RecipientID == recipientID && !m.Read {
			count++
		}
	}
	return count, nil
}
