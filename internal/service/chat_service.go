package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snigenigmatic/QuadChat/internal/audit"
	"github.com/snigenigmatic/QuadChat/internal/cache"
	"github.com/snigenigmatic/QuadChat/internal/config"
	"github.com/snigenigmatic/QuadChat/internal/delivery"
	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/kafka"
	"github.com/snigenigmatic/QuadChat/internal/presence"
	"github.com/snigenigmatic/QuadChat/internal/store"
	"github.com/snigenigmatic/QuadChat/pkg/log"
)

type chatService struct {
	registry *presence.Registry
	router   *delivery.Router
	store    store.Store
	cache    cache.HistoryCache    // optional, nil disables caching
	producer kafka.MessageProducer // optional, nil disables archiving
	cfg      config.ChatConfig
	cacheTTL time.Duration

	general *domain.Room // resolved by Start, read-only afterwards
}

// NewChatService wires the lifecycle controller. cache and producer may be
// nil; both are best-effort layers on top of the store.
func NewChatService(
	registry *presence.Registry,
	router *delivery.Router,
	st store.Store,
	historyCache cache.HistoryCache,
	producer kafka.MessageProducer,
	cfg config.ChatConfig,
	cacheTTL time.Duration,
) ChatService {
	return &chatService{
		registry: registry,
		router:   router,
		store:    st,
		cache:    historyCache,
		producer: producer,
		cfg:      cfg,
		cacheTTL: cacheTTL,
	}
}

func (s *chatService) Start(ctx context.Context) error {
	room, err := s.store.EnsureGeneralRoom(ctx, s.cfg.GeneralRoomName)
	if err != nil {
		return fmt.Errorf("failed to ensure general room: %w", err)
	}
	s.general = room

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldRoomID, room.ID).Msg("general room initialized")
	return nil
}

func (s *chatService) Stop() error {
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("failed to close message producer")
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("failed to close history cache")
		}
	}
	return nil
}

// HandleConnect registers the authenticated connection and broadcasts the
// updated presence snapshot to everyone.
func (s *chatService) HandleConnect(ctx context.Context, c Conn) error {
	identity := c.Identity()
	s.registry.Register(identity, c)

	// Everyone who connects belongs to the general room.
	if err := s.store.AddParticipant(ctx, s.general.ID, identity.ID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).
			Str(log.FieldUserID, identity.ID).
			Msg("failed to add user to general room")
	}

	s.router.BroadcastPresence(ctx)
	audit.Log(ctx, audit.ActionConnect, identity.ID, "user connected")
	return nil
}

// HandleDisconnect unregisters the connection. Safe to call for a
// connection that never registered (failed auth): nothing changes and no
// presence update is broadcast.
func (s *chatService) HandleDisconnect(ctx context.Context, c Conn) error {
	if !s.registry.Unregister(c) {
		return nil
	}

	s.router.BroadcastPresence(ctx)
	audit.Log(ctx, audit.ActionDisconnect, c.Identity().ID, "user disconnected")
	return nil
}

func (s *chatService) HandleSendMessage(ctx context.Context, c Conn, ev *domain.SendMessageEvent) error {
	if ev.Text == "" {
		return c.Push(domain.NewErrorAck(ev.AckID, "text is required"))
	}

	identity := c.Identity()
	msg := &domain.Message{
		RoomID:      s.general.ID,
		SenderID:    identity.ID,
		SenderName:  identity.Name,
		SenderEmail: identity.Email,
		Content:     ev.Text,
		ContentType: domain.ContentTypeText,
		CreatedAt:   ev.Timestamp,
	}

	if err := s.store.SaveRoomMessage(ctx, msg); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, identity.ID).Msg("failed to save room message")
		// Never push a message that failed to persist.
		return c.Push(domain.NewErrorAck(ev.AckID, "Failed to send message"))
	}

	s.invalidateHistory(ctx, msg.RoomID)
	s.archiveRoomMessage(ctx, msg)

	s.router.DeliverRoomMessage(ctx, msg)
	audit.Log(ctx, audit.ActionSendRoom, identity.ID, "room message sent")

	return c.Push(domain.NewSuccessAck(ev.AckID, msg))
}

func (s *chatService) HandleGetMessages(ctx context.Context, c Conn, ackID string) error {
	limit := s.cfg.HistoryLimit

	if s.cache != nil {
		messages, err := s.cache.Get(ctx, s.general.ID, limit)
		if err == nil {
			return c.Push(domain.NewSuccessAck(ackID, messages))
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("history cache read failed")
		}
	}

	messages, err := s.store.ListRoomMessages(ctx, s.general.ID, limit)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list room messages")
		return c.Push(domain.NewErrorAck(ackID, "Failed to get messages"))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.general.ID, limit, messages, s.cacheTTL); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("history cache write failed")
		}
	}

	return c.Push(domain.NewSuccessAck(ackID, messages))
}

func (s *chatService) HandleSendDirectMessage(ctx context.Context, c Conn, ev *domain.SendDirectMessageEvent) error {
	if ev.RecipientID == "" {
		return c.Push(domain.NewErrorAck(ev.AckID, "recipient_id is required"))
	}
	if ev.Content == "" {
		return c.Push(domain.NewErrorAck(ev.AckID, "content is required"))
	}

	contentType := ev.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeText
	}
	if !domain.ValidContentType(contentType) {
		return c.Push(domain.NewErrorAck(ev.AckID, "invalid content_type"))
	}

	identity := c.Identity()
	msg := &domain.DirectMessage{
		SenderID:    identity.ID,
		SenderName:  identity.Name,
		RecipientID: ev.RecipientID,
		Content:     ev.Content,
		ContentType: contentType,
		CreatedAt:   ev.Timestamp,
	}

	if err := s.store.SaveDirectMessage(ctx, msg); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).
			Str(log.FieldUserID, identity.ID).
			Str(log.FieldRecipientID, ev.RecipientID).
			Msg("failed to save direct message")
		return c.Push(domain.NewErrorAck(ev.AckID, "Failed to send direct message"))
	}

	s.archiveDirectMessage(ctx, msg)

	// The message is durable either way; live push is best effort.
	delivered := s.router.DeliverDirectMessage(ctx, msg)
	audit.LogWithDetail(ctx, audit.ActionSendDirect, identity.ID, ev.RecipientID, "direct message sent")

	return c.Push(domain.NewSuccessAck(ev.AckID, &domain.DirectMessageAck{
		DirectMessage: msg,
		Delivered:     delivered > 0,
	}))
}

func (s *chatService) HandleGetDirectMessages(ctx context.Context, c Conn, ev *domain.GetDirectMessagesEvent) error {
	if ev.UserID == "" {
		return c.Push(domain.NewErrorAck(ev.AckID, "user_id is required"))
	}

	identity := c.Identity()
	messages, err := s.store.ListDirectMessages(ctx, identity.ID, ev.UserID, s.cfg.HistoryLimit)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list direct messages")
		return c.Push(domain.NewErrorAck(ev.AckID, "Failed to get direct messages"))
	}

	// Opening the conversation marks the partner's messages as read.
	if _, err := s.store.MarkRead(ctx, identity.ID, ev.UserID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to mark messages read")
	}

	return c.Push(domain.NewSuccessAck(ev.AckID, messages))
}

// HandleTyping is fire-and-forget: no ack exists for this event and a
// delivery miss is not an error.
func (s *chatService) HandleTyping(ctx context.Context, c Conn, ev *domain.TypingEvent) error {
	if ev.RecipientID == "" {
		return nil
	}
	s.router.DeliverTyping(ctx, c.Identity().ID, ev.RecipientID, ev.IsTyping)
	return nil
}

func (s *chatService) invalidateHistory(ctx context.Context, roomID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, roomID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("history cache invalidation failed")
	}
}

func (s *chatService) archiveRoomMessage(ctx context.Context, msg *domain.Message) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceRoomMessage(ctx, msg); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to archive room message")
	}
}

func (s *chatService) archiveDirectMessage(ctx context.Context, msg *domain.DirectMessage) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceDirectMessage(ctx, msg); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to archive direct message")
	}
}
