// Package store is the persistence boundary of the chat core: users,
// rooms, and messages, keyed by opaque IDs.
package store

import (
	"context"
	"errors"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoomNotFound = errors.New("room not found")
)

// UserStore persists user accounts.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// RoomStore persists rooms. The core reads participant lists to decide
// room delivery scope; room lifecycle itself is owned elsewhere.
type RoomStore interface {
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	// EnsureGeneralRoom returns the room with the given name, creating it
	// (and its system creator) on first use.
	EnsureGeneralRoom(ctx context.Context, name string) (*domain.Room, error)
	// AddParticipant adds a user to the room's participant list. Adding an
	// existing participant is a no-op.
	AddParticipant(ctx context.Context, roomID, userID string) error
}

// MessageStore persists room and direct messages.
type MessageStore interface {
	SaveRoomMessage(ctx context.Context, msg *domain.Message) error
	// ListRoomMessages returns up to limit most recent room messages in
	// chronological order.
	ListRoomMessages(ctx context.Context, roomID string, limit int) ([]domain.Message, error)

	SaveDirectMessage(ctx context.Context, msg *domain.DirectMessage) error
	// ListDirectMessages returns the conversation between two users (both
	// directions) in chronological order, up to limit messages.
	ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]domain.DirectMessage, error)
	// MarkRead flips the read flag on all unread messages sent by senderID
	// to recipientID and returns how many were updated.
	MarkRead(ctx context.Context, recipientID, senderID string) (int64, error)
	// CountUnread returns the number of unread direct messages addressed
	// to the user.
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

// Store is the full persistence surface the chat service depends on.
type Store interface {
	UserStore
	RoomStore
	MessageStore
}
