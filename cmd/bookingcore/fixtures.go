package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/properties"
)

type propertyFixture struct {
	ID        string `json:"id"`
	OwnerName string `json:"owner_name"`
}

// loadPropertyFixtures registers the properties listed in a JSON file through
// the admin bus, so every storage driver receives them the same way.
func (a *application) loadPropertyFixtures(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		cmd := properties.RegisterPropertyCommand{PropertyID: fx.ID, OwnerName: fx.OwnerName}
		if _, err := commands.Dispatch[properties.RegisterPropertyCommand, *dto.Property](ctx, a.admin, cmd); err != nil {
			a.logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		a.logger.Info("property fixture imported", "property_id", fx.ID)
	}
	return nil
}
