package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/properties"
)

var ErrMalformedEvent = errors.New("kafka: malformed property event")

// Inbox records consumed event ids. Seen reports whether id was recorded before.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

type cloudEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type propertyData struct {
	PropertyID string `json:"property_id"`
	OwnerName  string `json:"owner_name"`
}

// PropertyIngestHandler turns property CloudEvents from the owning system
// into RegisterPropertyCommand dispatches.
type PropertyIngestHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *PropertyIngestHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.skip(ctx, msg, fmt.Errorf("%w: %v", ErrMalformedEvent, err))
		return nil
	}
	if !handledType(evt.Type) {
		return nil
	}
	var data propertyData
	if err := json.Unmarshal(evt.Data, &data); err != nil || evt.ID == "" {
		h.skip(ctx, msg, ErrMalformedEvent)
		return nil
	}

	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	cmd := properties.RegisterPropertyCommand{PropertyID: data.PropertyID, OwnerName: data.OwnerName}
	if _, err := commands.Dispatch[properties.RegisterPropertyCommand, *dto.Property](ctx, h.Bus, cmd); err != nil {
		// the id is already recorded, so a failed dispatch is not redelivered
		if h.Logger != nil {
			h.Logger.ErrorContext(ctx, "property.ingest_failed", "event_id", evt.ID, "property_id", data.PropertyID, "error", err)
		}
		return err
	}
	return nil
}

func (h *PropertyIngestHandler) skip(ctx context.Context, msg *sarama.ConsumerMessage, err error) {
	if h.Logger != nil {
		h.Logger.WarnContext(ctx, "property.ingest_skipped", "topic", msg.Topic, "offset", msg.Offset, "error", err)
	}
}

func handledType(t string) bool {
	t = strings.TrimSuffix(t, ".v1")
	return t == "property.registered" || t == "property.updated" || t == "property.owner_changed"
}

var _ MessageHandler = (*PropertyIngestHandler)(nil)
