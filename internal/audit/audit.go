package audit

import (
	"context"

	"github.com/cristianxmm/tv-signage-system/internal/log"
)

// Audit actions for the signage dispatcher.
const (
	ActionPublish    = "signage.publish"
	ActionJoinZone   = "signage.join_zone"
	ActionDisconnect = "signage.disconnect"
	ActionAuthFailed = "signage.auth_failed"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, actor string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUser, actor).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, actor string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUser, actor).
		Str(FieldDetail, detail).
		Msg(msg)
}
