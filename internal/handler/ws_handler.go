package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/snigenigmatic/QuadChat/internal/audit"
	"github.com/snigenigmatic/QuadChat/internal/auth"
	"github.com/snigenigmatic/QuadChat/internal/config"
	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/internal/hub"
	"github.com/snigenigmatic/QuadChat/internal/service"
	"github.com/snigenigmatic/QuadChat/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades connections and dispatches inbound events to the
// chat service.
type WSHandler struct {
	service service.ChatService
	auth    auth.Authenticator
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(svc service.ChatService, authenticator auth.Authenticator, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		service: svc,
		auth:    authenticator,
		wsCfg:   wsCfg,
	}
}

// HandleWebSocket authenticates the handshake and, on success, hands the
// connection to the lifecycle. A bad token is rejected before anything is
// registered, so a failed attempt leaves no trace in presence.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.auth.Authenticate(ctx, bearerToken(r))
	if err != nil {
		audit.LogWithDetail(ctx, audit.ActionAuthFailed, "", err.Error(), "connection rejected")
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), identity, conn, h.wsCfg, func(c *hub.Client) {
		// Runs exactly once per connection, whatever caused the close.
		h.service.HandleDisconnect(context.Background(), c)
	})

	if err := h.service.HandleConnect(ctx, client); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, identity.ID).Msg("connect handling failed")
		client.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(func(c *hub.Client, message []byte) {
		h.handleEvent(c, message)
	})
}

// bearerToken extracts the handshake token from the query string or the
// Authorization header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// handleEvent is the single error boundary per inbound event: any failure,
// panics included, is converted to a structured ack or error event and the
// connection stays up.
func (h *WSHandler) handleEvent(client service.Conn, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.Push(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid event format"))
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			l := log.L()
			l.Error().
				Interface("panic", rec).
				Str(log.FieldConnectionID, client.ID()).
				Str(log.FieldEventType, base.Type).
				Msg("event handler panicked")
			if base.AckID != "" {
				client.Push(domain.NewErrorAck(base.AckID, "Internal error"))
			} else {
				client.Push(domain.NewErrorEvent(domain.ErrCodeInternalError, "Internal error"))
			}
		}
	}()

	ctx := context.Background()

	switch base.Type {
	case domain.EventSendMessage:
		var ev domain.SendMessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.Push(domain.NewErrorAck(base.AckID, "Invalid send_message event"))
			return
		}
		h.logHandlerErr(client, base.Type, h.service.HandleSendMessage(ctx, client, &ev))

	case domain.EventGetMessages:
		h.logHandlerErr(client, base.Type, h.service.HandleGetMessages(ctx, client, base.AckID))

	case domain.EventSendDirectMessage:
		var ev domain.SendDirectMessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.Push(domain.NewErrorAck(base.AckID, "Invalid send_direct_message event"))
			return
		}
		h.logHandlerErr(client, base.Type, h.service.HandleSendDirectMessage(ctx, client, &ev))

	case domain.EventGetDirectMessages:
		var ev domain.GetDirectMessagesEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.Push(domain.NewErrorAck(base.AckID, "Invalid get_direct_messages event"))
			return
		}
		h.logHandlerErr(client, base.Type, h.service.HandleGetDirectMessages(ctx, client, &ev))

	case domain.EventTyping:
		var ev domain.TypingEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			// No ack path exists for typing; drop it.
			return
		}
		h.logHandlerErr(client, base.Type, h.service.HandleTyping(ctx, client, &ev))

	case domain.EventPing:
		client.Push(&domain.BaseEvent{Type: domain.EventPong})

	default:
		client.Push(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown event type"))
	}
}

func (h *WSHandler) logHandlerErr(client service.Conn, eventType string, err error) {
	if err != nil {
		l := log.L()
		l.Warn().Err(err).
			Str(log.FieldConnectionID, client.ID()).
			Str(log.FieldEventType, eventType).
			Msg("event handling failed")
	}
}

// RegisterRoutes mounts the WebSocket endpoint.
func (h *WSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.HandleWebSocket)
}
