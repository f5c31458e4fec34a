package audit

import (
	"context"
	"log/slog"

	"procuration/pkg/requestcontext"
)

// LogAudit logs an audit event to the structured logger and emits it to the
// publisher if one is set. attrs are slog key/value pairs; "subject", "offer"
// and "reason" are also copied onto the published event.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, action Action, attrs ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}

	args := append(attrs, "event", string(action), "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, string(action), args...)
	}

	if publisher == nil {
		return
	}
	event := Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		Subject:   stringAttr(attrs, "subject"),
		Offer:     stringAttr(attrs, "offer"),
		Reason:    stringAttr(attrs, "reason"),
		RequestID: requestID,
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(action), "error", err)
	}
}

func stringAttr(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			if v, ok := attrs[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}
