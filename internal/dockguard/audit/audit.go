package audit

import (
	"context"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/pkg/logger"
	"github.com/google/uuid"
)

// Sink accepts shaped events. Typically a redis stream.
type Sink interface {
	Emit(context.Context, models.AuditEvent) error
}

// Emitter shapes lifecycle outcomes into audit events and hands them
// to the sink. Emission is best-effort: a sink failure is logged and
// never surfaced, so it cannot block the operation that triggered it.
type Emitter struct {
	sink Sink
	lg   logger.Logger
}

func New(sink Sink, lg logger.Logger) *Emitter {
	return &Emitter{
		sink: sink,
		lg:   lg,
	}
}

func (e *Emitter) UserCreated(ctx context.Context, actor models.Principal, created models.User) {
	e.emit(ctx, models.EventUserCreated, models.SeverityInfo, actor.UserID, map[string]interface{}{
		"created_user_id":  created.ID,
		"created_username": created.Username,
		"role":             created.Role,
		"created_by":       actor.Username,
	})
}

func (e *Emitter) UserUpdated(ctx context.Context, actor models.Principal,
	updated models.User, changes map[string]interface{},
) {
	e.emit(ctx, models.EventUserUpdated, models.SeverityInfo, actor.UserID, map[string]interface{}{
		"updated_user_id":  updated.ID,
		"updated_username": updated.Username,
		"changes":          changes,
		"updated_by":       actor.Username,
	})
}

func (e *Emitter) UserDeleted(ctx context.Context, actor models.Principal, deletedID int, username string) {
	e.emit(ctx, models.EventUserDeleted, models.SeverityWarning, actor.UserID, map[string]interface{}{
		"deleted_user_id":  deletedID,
		"deleted_username": username,
		"deleted_by":       actor.Username,
	})
}

// PasswordReset reports the reset itself. Details never carry the
// temporary credential.
func (e *Emitter) PasswordReset(ctx context.Context, actor models.Principal, target models.User) {
	e.emit(ctx, models.EventUserPasswordReset, models.SeverityWarning, actor.UserID, map[string]interface{}{
		"reset_user_id":  target.ID,
		"reset_username": target.Username,
		"reset_by":       actor.Username,
	})
}

func (e *Emitter) emit(ctx context.Context, t models.AuditEventType,
	severity models.AuditSeverity, actorID int, details map[string]interface{},
) {
	evt := models.AuditEvent{
		ID:           uuid.NewString(),
		Type:         t,
		Severity:     severity,
		ActingUserID: actorID,
		Timestamp:    time.Now().UTC(),
		Details:      details,
	}

	if err := e.sink.Emit(ctx, evt); err != nil {
		e.lg.Errorf("audit emit error: %s", err.Error())
	}
}
