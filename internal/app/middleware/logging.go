package middleware

import (
	"context"
	"log/slog"
	"time"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/queries"
)

func Logging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		if logger == nil {
			return next
		}
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				logger.WarnContext(ctx, "command failed", "command", cmd.Key(), "duration", time.Since(start), "error", err)
				return nil, err
			}
			logger.DebugContext(ctx, "command handled", "command", cmd.Key(), "duration", time.Since(start))
			return res, nil
		})
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		if logger == nil {
			return next
		}
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			res, err := next.Ask(ctx, q)
			if err != nil {
				logger.DebugContext(ctx, "query failed", "query", q.Key(), "error", err)
			}
			return res, err
		})
	}
}
