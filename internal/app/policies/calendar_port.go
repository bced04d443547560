package policies

import (
	"context"
	"io"
)

// CalendarStore persists exported calendar documents and returns where they live.
type CalendarStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}
