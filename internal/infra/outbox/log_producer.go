package outbox

import (
	"context"
	"log/slog"
)

// LogProducer stands in for a broker when none is configured: envelopes are
// logged and acknowledged so the outbox still drains.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, _ map[string]string) error {
	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "outbox.event_published", "topic", topic, "key", key, "bytes", len(payload))
	}
	return nil
}

var _ Producer = LogProducer{}
