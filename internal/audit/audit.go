package audit

import (
	"context"

	"github.com/snigenigmatic/QuadChat/pkg/log"
)

// Audit actions for the chat server.
const (
	ActionConnect    = "chat.connect"
	ActionAuthFailed = "chat.auth_failed"
	ActionDisconnect = "chat.disconnect"
	ActionSendRoom   = "chat.send_message"
	ActionSendDirect = "chat.send_direct_message"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action, userID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
