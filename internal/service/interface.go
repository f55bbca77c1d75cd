package service

import (
	"context"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/presence"
)

// Conn is the service's view of one authenticated connection: a presence
// handle that knows which identity owns it.
type Conn interface {
	presence.Conn
	Identity() domain.Identity
}

// ChatService owns the per-connection lifecycle and dispatches inbound
// chat events. Every fallible handler reports through the ack path; no
// failure escapes a handler or terminates the connection.
type ChatService interface {
	// Start resolves startup state (the general room). Must be called
	// before the first connection is accepted.
	Start(ctx context.Context) error
	Stop() error

	HandleConnect(ctx context.Context, c Conn) error
	HandleDisconnect(ctx context.Context, c Conn) error
	HandleSendMessage(ctx context.Context, c Conn, ev *domain.SendMessageEvent) error
	HandleGetMessages(ctx context.Context, c Conn, ackID string) error
	HandleSendDirectMessage(ctx context.Context, c Conn, ev *domain.SendDirectMessageEvent) error
	HandleGetDirectMessages(ctx context.Context, c Conn, ev *domain.GetDirectMessagesEvent) error
	HandleTyping(ctx context.Context, c Conn, ev *domain.TypingEvent) error
}
