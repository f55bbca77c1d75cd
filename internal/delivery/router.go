// Package delivery computes the set of connections an outbound event
// should reach and pushes it there. It reads presence, never mutates it.
package delivery

import (
	"context"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/presence"
	"github.com/snigenigmatic/QuadChat/internal/store"
	"github.com/snigenigmatic/QuadChat/pkg/log"
)

// Router fans outbound events out to the right connections.
type Router struct {
	registry *presence.Registry
	rooms    store.RoomStore
}

// NewRouter creates a delivery router over the given presence registry
// and room store.
func NewRouter(registry *presence.Registry, rooms store.RoomStore) *Router {
	return &Router{registry: registry, rooms: rooms}
}

// BroadcastPresence pushes the current online-users snapshot to every
// connected handle.
func (r *Router) BroadcastPresence(ctx context.Context) {
	snapshot := r.registry.Snapshot()
	users := make([]domain.OnlineUser, len(snapshot))
	for i, id := range snapshot {
		users[i] = domain.OnlineUser{ID: id.ID, Name: id.Name}
	}

	event := &domain.OnlineUsersEvent{Type: domain.EventOnlineUsers, Users: users}
	for _, c := range r.registry.Conns() {
		c.Push(event)
	}
}

// DeliverRoomMessage pushes a persisted room message to the connections of
// every room participant, sender included. Returns how many connections
// were pushed to. A failure to read the participant list loses only the
// live push; the message is already durable, so the error is logged and
// swallowed.
func (r *Router) DeliverRoomMessage(ctx context.Context, msg *domain.Message) int {
	room, err := r.rooms.GetRoom(ctx, msg.RoomID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).
			Str(log.FieldRoomID, msg.RoomID).
			Str(log.FieldMessageID, msg.ID).
			Msg("failed to resolve room participants, skipping live delivery")
		return 0
	}

	event := &domain.MessageEvent{Type: domain.EventMessage, Message: msg}
	delivered := 0
	for _, participantID := range room.Participants {
		for _, c := range r.registry.Lookup(participantID) {
			c.Push(event)
			delivered++
		}
	}
	return delivered
}

// DeliverDirectMessage pushes a persisted direct message to each of the
// recipient's open connections. Zero is a normal outcome, not an error:
// the message stays durable in the store and the recipient reads it from
// history.
func (r *Router) DeliverDirectMessage(ctx context.Context, msg *domain.DirectMessage) int {
	event := &domain.DirectMessageEvent{Type: domain.EventDirectMessage, Message: msg}
	delivered := 0
	for _, c := range r.registry.Lookup(msg.RecipientID) {
		c.Push(event)
		delivered++
	}
	return delivered
}

// DeliverTyping pushes a typing indicator to the recipient's connections.
// Fire-and-forget: never persisted, no ack, a miss is silently ignored.
func (r *Router) DeliverTyping(ctx context.Context, senderID, recipientID string, isTyping bool) {
	event := &domain.TypingStatusEvent{
		Type:     domain.EventTypingStatus,
		UserID:   senderID,
		IsTyping: isTyping,
	}
	for _, c := range r.registry.Lookup(recipientID) {
		c.Push(event)
	}
}
