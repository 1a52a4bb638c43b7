package log

import (
	"context"

	"github.com/rs/zerolog"
)

// Audit returns an info event pre-tagged as an audit entry on the
// context logger. Callers add their own fields and call Msg.
func Audit(ctx context.Context, action string) *zerolog.Event {
	l := Ctx(ctx)
	return l.Info().
		Str(FieldLogType, LogTypeAudit).
		Str("action", action)
}
