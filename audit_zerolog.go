package authcache

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologSink writes audit events as structured log lines. Failed events log
// at warn level, successes at info.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink creates an AuditSink backed by the given logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Emit implements AuditSink.
func (s *ZerologSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil {
		return
	}

	var e *zerolog.Event
	if event.Success {
		e = s.logger.Info()
	} else {
		e = s.logger.Warn()
	}

	e = e.Time("timestamp", event.Timestamp).
		Str("event_type", event.EventType).
		Bool("success", event.Success)
	if event.UserID != "" {
		e = e.Str("user_id", event.UserID)
	}
	if event.LoginID != "" {
		e = e.Str("login_id", event.LoginID)
	}
	if event.CacheKey != "" {
		e = e.Str("cache_key", event.CacheKey)
	}
	if event.IP != "" {
		e = e.Str("ip", event.IP)
	}
	if event.Error != "" {
		e = e.Str("error", event.Error)
	}
	for k, v := range event.Metadata {
		e = e.Str("meta_"+k, v)
	}

	e.Msg("audit")
}
