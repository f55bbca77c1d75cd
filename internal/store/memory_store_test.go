package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snigenigmatic/QuadChat/internal/domain"
)

func TestEnsureGeneralRoomIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.EnsureGeneralRoom(ctx, "general")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.EnsureGeneralRoom(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAddParticipantIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	room, err := s.EnsureGeneralRoom(ctx, "general")
	require.NoError(t, err)

	require.NoError(t, s.AddParticipant(ctx, room.ID, "u1"))
	require.NoError(t, s.AddParticipant(ctx, room.ID, "u1"))

	got, err := s.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.Participants)
}

func TestAddParticipantUnknownRoom(t *testing.T) {
	s := NewMemoryStore()

	err := s.AddParticipant(context.Background(), "no-such-room", "u1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGetUserNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSaveRoomMessageAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryStore()

	msg := &domain.Message{RoomID: "r1", SenderID: "u1", Content: "hi"}
	require.NoError(t, s.SaveRoomMessage(context.Background(), msg))

	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestListRoomMessagesChronologicalWithLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveRoomMessage(ctx, &domain.Message{
			RoomID:    "r1",
			SenderID:  "u1",
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.SaveRoomMessage(ctx, &domain.Message{
		RoomID: "r2", SenderID: "u1", Content: "other room",
	}))

	// The limit keeps the newest messages, returned oldest first.
	got, err := s.ListRoomMessages(ctx, "r1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Content)
	assert.Equal(t, "d", got[1].Content)
	assert.Equal(t, "e", got[2].Content)
}

func TestListDirectMessagesCoversBothDirections(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	save := func(sender, recipient, content string, offset time.Duration) {
		require.NoError(t, s.SaveDirectMessage(ctx, &domain.DirectMessage{
			SenderID:    sender,
			RecipientID: recipient,
			Content:     content,
			CreatedAt:   base.Add(offset),
		}))
	}

	save("u1", "u2", "hello", 0)
	save("u2", "u1", "hey", time.Second)
	save("u1", "u3", "unrelated", 2*time.Second)

	got, err := s.ListDirectMessages(ctx, "u1", "u2", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "hey", got[1].Content)

	// Same conversation regardless of argument order.
	flipped, err := s.ListDirectMessages(ctx, "u2", "u1", 50)
	require.NoError(t, err)
	assert.Equal(t, got, flipped)
}

func TestMarkReadAffectsOnlyOneDirection(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SaveDirectMessage(ctx, &domain.DirectMessage{
		SenderID: "u1", RecipientID: "u2", Content: "one",
	}))
	require.NoError(t, s.SaveDirectMessage(ctx, &domain.DirectMessage{
		SenderID: "u1", RecipientID: "u2", Content: "two",
	}))
	require.NoError(t, s.SaveDirectMessage(ctx, &domain.DirectMessage{
		SenderID: "u2", RecipientID: "u1", Content: "reply",
	}))

	updated, err := s.MarkRead(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	// u1's copy of the conversation is untouched.
	count, err := s.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = s.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Marking again finds nothing left to update.
	updated, err = s.MarkRead(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Zero(t, updated)
}
