package domain

import "time"

// WebSocket event types from client.
const (
	EventSendMessage       = "send_message"
	EventGetMessages       = "get_messages"
	EventSendDirectMessage = "send_direct_message"
	EventGetDirectMessages = "get_direct_messages"
	EventTyping            = "typing"
	EventPing              = "ping"
)

// WebSocket event types to client.
const (
	EventOnlineUsers   = "online_users"
	EventMessage       = "message"
	EventDirectMessage = "direct_message"
	EventTypingStatus  = "typing_status"
	EventAck           = "ack"
	EventError         = "error"
	EventPong          = "pong"
)

// Ack statuses.
const (
	AckSuccess = "success"
	AckError   = "error"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseEvent is the envelope shared by all WebSocket events. AckID, when
// present on an inbound event, asks for an ack event carrying the same ID.
type BaseEvent struct {
	Type  string `json:"type"`
	AckID string `json:"ack_id,omitempty"`
}

// Client -> Server events

type SendMessageEvent struct {
	Type      string    `json:"type"`
	AckID     string    `json:"ack_id,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type SendDirectMessageEvent struct {
	Type        string    `json:"type"`
	AckID       string    `json:"ack_id,omitempty"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

type GetDirectMessagesEvent struct {
	Type   string `json:"type"`
	AckID  string `json:"ack_id,omitempty"`
	UserID string `json:"user_id"`
}

type TypingEvent struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id"`
	IsTyping    bool   `json:"is_typing"`
}

// Server -> Client events

// OnlineUser is one entry of the presence snapshot broadcast.
type OnlineUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OnlineUsersEvent struct {
	Type  string       `json:"type"`
	Users []OnlineUser `json:"users"`
}

type MessageEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

type DirectMessageEvent struct {
	Type    string         `json:"type"`
	Message *DirectMessage `json:"message"`
}

type TypingStatusEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

// AckEvent is the single acknowledgment path for fallible inbound events:
// status is "success" with Data set, or "error" with Message set.
type AckEvent struct {
	Type    string      `json:"type"`
	AckID   string      `json:"ack_id,omitempty"`
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewSuccessAck builds a success ack for the given request.
func NewSuccessAck(ackID string, data interface{}) *AckEvent {
	return &AckEvent{Type: EventAck, AckID: ackID, Status: AckSuccess, Data: data}
}

// NewErrorAck builds an error ack for the given request.
func NewErrorAck(ackID, message string) *AckEvent {
	return &AckEvent{Type: EventAck, AckID: ackID, Status: AckError, Message: message}
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{Type: EventError, Code: code, Message: message}
}

// DirectMessageAck is the ack payload for send_direct_message: the stored
// message plus whether any live push reached the recipient. Delivered false
// means "delivered to storage only", which is not an error.
type DirectMessageAck struct {
	*DirectMessage
	Delivered bool `json:"delivered"`
}
