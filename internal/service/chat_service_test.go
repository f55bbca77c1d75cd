package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snigenigmatic/QuadChat/internal/config"
	"github.com/snigenigmatic/QuadChat/internal/delivery"
	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/presence"
	"github.com/snigenigmatic/QuadChat/internal/store"
)

type fakeConn struct {
	id       string
	identity domain.Identity
	events   []interface{}
}

func (c *fakeConn) ID() string                { return c.id }
func (c *fakeConn) Identity() domain.Identity { return c.identity }

func (c *fakeConn) Push(v interface{}) error {
	c.events = append(c.events, v)
	return nil
}

// acks returns all ack events pushed to the connection, in order.
func (c *fakeConn) acks() []*domain.AckEvent {
	var out []*domain.AckEvent
	for _, ev := range c.events {
		if ack, ok := ev.(*domain.AckEvent); ok {
			out = append(out, ack)
		}
	}
	return out
}

// directMessages returns all direct message events pushed, in order.
func (c *fakeConn) directMessages() []*domain.DirectMessageEvent {
	var out []*domain.DirectMessageEvent
	for _, ev := range c.events {
		if dm, ok := ev.(*domain.DirectMessageEvent); ok {
			out = append(out, dm)
		}
	}
	return out
}

func (c *fakeConn) presenceBroadcasts() []*domain.OnlineUsersEvent {
	var out []*domain.OnlineUsersEvent
	for _, ev := range c.events {
		if p, ok := ev.(*domain.OnlineUsersEvent); ok {
			out = append(out, p)
		}
	}
	return out
}

type fixture struct {
	svc      ChatService
	registry *presence.Registry
	store    store.Store
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()

	registry := presence.NewRegistry()
	router := delivery.NewRouter(registry, st)
	svc := NewChatService(registry, router, st, nil, nil, config.ChatConfig{
		GeneralRoomName: "general",
		HistoryLimit:    50,
	}, 0)

	require.NoError(t, svc.Start(context.Background()))
	return &fixture{svc: svc, registry: registry, store: st}
}

func (f *fixture) connect(t *testing.T, userID, name string) *fakeConn {
	t.Helper()

	c := &fakeConn{
		id:       "conn-" + userID + "-" + name,
		identity: domain.Identity{ID: userID, Name: name},
	}
	require.NoError(t, f.svc.HandleConnect(context.Background(), c))
	return c
}

func TestDirectMessageToOnlineRecipient(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")

	err := f.svc.HandleSendDirectMessage(ctx, a, &domain.SendDirectMessageEvent{
		AckID:       "req-1",
		RecipientID: "u2",
		Content:     "hi",
		ContentType: domain.ContentTypeText,
	})
	require.NoError(t, err)

	acks := a.acks()
	require.Len(t, acks, 1)
	assert.Equal(t, "req-1", acks[0].AckID)
	assert.Equal(t, domain.AckSuccess, acks[0].Status)

	data, ok := acks[0].Data.(*domain.DirectMessageAck)
	require.True(t, ok)
	assert.True(t, data.Delivered)
	assert.Equal(t, "hi", data.Content)

	// Pushed exactly once to the recipient's single connection.
	dms := b.directMessages()
	require.Len(t, dms, 1)
	assert.Equal(t, "hi", dms[0].Message.Content)
	assert.Equal(t, "u1", dms[0].Message.SenderID)
}

func TestDirectMessageToOfflineRecipientIsStoredNotPushed(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")
	require.NoError(t, f.svc.HandleDisconnect(ctx, b))

	pushedBefore := len(b.events)

	err := f.svc.HandleSendDirectMessage(ctx, a, &domain.SendDirectMessageEvent{
		AckID:       "req-1",
		RecipientID: "u2",
		Content:     "you there?",
	})
	require.NoError(t, err)

	acks := a.acks()
	require.Len(t, acks, 1)
	assert.Equal(t, domain.AckSuccess, acks[0].Status)

	data, ok := acks[0].Data.(*domain.DirectMessageAck)
	require.True(t, ok)
	assert.False(t, data.Delivered, "delivered to storage only")

	assert.Len(t, b.events, pushedBefore, "no outbound push to a closed connection")

	// After reconnecting, a history fetch includes the message.
	b2 := f.connect(t, "u2", "bob")
	require.NoError(t, f.svc.HandleGetDirectMessages(ctx, b2, &domain.GetDirectMessagesEvent{
		AckID:  "req-2",
		UserID: "u1",
	}))

	acks = b2.acks()
	require.Len(t, acks, 1)
	history, ok := acks[0].Data.([]domain.DirectMessage)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, "you there?", history[0].Content)
}

func TestDirectMessagesArriveInOrder(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, f.svc.HandleSendDirectMessage(ctx, a, &domain.SendDirectMessageEvent{
			RecipientID: "u2",
			Content:     text,
		}))
	}

	dms := b.directMessages()
	require.Len(t, dms, 3)
	assert.Equal(t, "first", dms[0].Message.Content)
	assert.Equal(t, "second", dms[1].Message.Content)
	assert.Equal(t, "third", dms[2].Message.Content)
}

func TestRoomMessagePersistsAndBroadcasts(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")

	err := f.svc.HandleSendMessage(ctx, a, &domain.SendMessageEvent{
		AckID: "req-1",
		Text:  "hello room",
	})
	require.NoError(t, err)

	acks := a.acks()
	require.Len(t, acks, 1)
	assert.Equal(t, domain.AckSuccess, acks[0].Status)

	// Both participants (sender included) get the broadcast.
	for _, c := range []*fakeConn{a, b} {
		var got []*domain.MessageEvent
		for _, ev := range c.events {
			if m, ok := ev.(*domain.MessageEvent); ok {
				got = append(got, m)
			}
		}
		require.Len(t, got, 1)
		assert.Equal(t, "hello room", got[0].Message.Content)
		assert.Equal(t, "alice", got[0].Message.SenderName)
	}

	// History fetch returns it.
	require.NoError(t, f.svc.HandleGetMessages(ctx, b, "req-2"))
	acks = b.acks()
	require.Len(t, acks, 1)
	history, ok := acks[0].Data.([]domain.Message)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, "hello room", history[0].Content)
}

func TestEmptyMessageTextRejectedLocally(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())

	a := f.connect(t, "u1", "alice")
	require.NoError(t, f.svc.HandleSendMessage(context.Background(), a, &domain.SendMessageEvent{
		AckID: "req-1",
	}))

	acks := a.acks()
	require.Len(t, acks, 1)
	assert.Equal(t, domain.AckError, acks[0].Status)
	assert.NotEmpty(t, acks[0].Message)
}

func TestInvalidDirectMessagePayloadRejected(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()
	a := f.connect(t, "u1", "alice")

	cases := []struct {
		name string
		ev   *domain.SendDirectMessageEvent
	}{
		{"missing recipient", &domain.SendDirectMessageEvent{AckID: "r", Content: "hi"}},
		{"missing content", &domain.SendDirectMessageEvent{AckID: "r", RecipientID: "u2"}},
		{"bad content type", &domain.SendDirectMessageEvent{AckID: "r", RecipientID: "u2", Content: "hi", ContentType: "gif"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := len(a.acks())
			require.NoError(t, f.svc.HandleSendDirectMessage(ctx, a, tc.ev))

			acks := a.acks()
			require.Len(t, acks, before+1)
			assert.Equal(t, domain.AckError, acks[len(acks)-1].Status)
		})
	}
}

// failingStore wraps a Store and fails all message writes.
type failingStore struct {
	store.Store
}

var errWrite = errors.New("write failed")

func (s *failingStore) SaveRoomMessage(ctx context.Context, msg *domain.Message) error {
	return errWrite
}

func (s *failingStore) SaveDirectMessage(ctx context.Context, msg *domain.DirectMessage) error {
	return errWrite
}

func TestPersistFailureMeansNoBroadcast(t *testing.T) {
	f := newFixture(t, &failingStore{Store: store.NewMemoryStore()})
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")
	pushedBefore := len(b.events)

	require.NoError(t, f.svc.HandleSendDirectMessage(ctx, a, &domain.SendDirectMessageEvent{
		AckID:       "req-1",
		RecipientID: "u2",
		Content:     "hi",
	}))

	acks := a.acks()
	require.Len(t, acks, 1)
	assert.Equal(t, domain.AckError, acks[0].Status)
	assert.Len(t, b.events, pushedBefore, "never push a message that failed to persist")

	require.NoError(t, f.svc.HandleSendMessage(ctx, a, &domain.SendMessageEvent{
		AckID: "req-2",
		Text:  "hello room",
	}))
	acks = a.acks()
	require.Len(t, acks, 2)
	assert.Equal(t, domain.AckError, acks[1].Status)
	assert.Len(t, b.events, pushedBefore)
}

func TestTypingToOfflineRecipientNoAckNoError(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())

	a := f.connect(t, "u1", "alice")
	before := len(a.events)

	require.NoError(t, f.svc.HandleTyping(context.Background(), a, &domain.TypingEvent{
		RecipientID: "u2",
		IsTyping:    true,
	}))

	assert.Len(t, a.events, before, "typing has no ack path")
}

func TestPresenceBroadcastOnConnectAndDisconnect(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")

	broadcasts := a.presenceBroadcasts()
	require.Len(t, broadcasts, 1)
	assert.Len(t, broadcasts[0].Users, 1)

	b := f.connect(t, "u2", "bob")
	broadcasts = a.presenceBroadcasts()
	require.Len(t, broadcasts, 2)
	assert.Len(t, broadcasts[1].Users, 2)

	require.NoError(t, f.svc.HandleDisconnect(ctx, b))
	broadcasts = a.presenceBroadcasts()
	require.Len(t, broadcasts, 3)
	assert.Len(t, broadcasts[2].Users, 1)
	assert.Equal(t, "u1", broadcasts[2].Users[0].ID)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")

	require.NoError(t, f.svc.HandleDisconnect(ctx, b))
	after := len(a.presenceBroadcasts())

	// A duplicate disconnect signal changes nothing.
	require.NoError(t, f.svc.HandleDisconnect(ctx, b))
	assert.Len(t, a.presenceBroadcasts(), after)
}

func TestDisconnectOfUnregisteredConnectionIsNoop(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	before := f.registry.Snapshot()

	// A connection that failed auth never registered.
	ghost := &fakeConn{id: "conn-ghost", identity: domain.Identity{ID: "u9"}}
	require.NoError(t, f.svc.HandleDisconnect(ctx, ghost))

	assert.Equal(t, before, f.registry.Snapshot())
	assert.Len(t, a.presenceBroadcasts(), 1, "no presence rebroadcast for a no-op disconnect")
}

func TestGetDirectMessagesMarksConversationRead(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	ctx := context.Background()

	a := f.connect(t, "u1", "alice")
	b := f.connect(t, "u2", "bob")

	require.NoError(t, f.svc.HandleSendDirectMessage(ctx, a, &domain.SendDirectMessageEvent{
		RecipientID: "u2",
		Content:     "unread",
	}))

	count, err := f.store.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, f.svc.HandleGetDirectMessages(ctx, b, &domain.GetDirectMessagesEvent{
		AckID:  "req-1",
		UserID: "u1",
	}))

	count, err = f.store.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, count)
}
