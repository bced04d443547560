package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	availabilityapp "bookingcore/internal/app/handlers/availability"
	blockapp "bookingcore/internal/app/handlers/block"
	bookingapp "bookingcore/internal/app/handlers/booking"
	"bookingcore/internal/app/handlers/properties"
	"bookingcore/internal/app/locks"
	"bookingcore/internal/app/middleware"
	appoutbox "bookingcore/internal/app/outbox"
	"bookingcore/internal/app/policies"
	"bookingcore/internal/app/queries"
	"bookingcore/internal/app/uow"
	domainavailability "bookingcore/internal/domain/availability"
	"bookingcore/internal/infra/broker/kafka"
	"bookingcore/internal/infra/config"
	mongodb "bookingcore/internal/infra/db/mongo"
	"bookingcore/internal/infra/db/postgres"
	ginserver "bookingcore/internal/infra/http/gin"
	"bookingcore/internal/infra/obs"
	infraoutbox "bookingcore/internal/infra/outbox"
	"bookingcore/internal/infra/storage/memory"
	redislock "bookingcore/internal/infra/storage/redis"
	"bookingcore/internal/infra/storage/s3"
	"bookingcore/internal/infra/validation"
)

type application struct {
	handlers   ginserver.Handlers
	checks     map[string]obs.Check
	background []func(ctx context.Context) error
	closers    []func(ctx context.Context) error

	admin  commands.Bus
	logger *slog.Logger
}

// storage is what a driver contributes: transactional units plus the
// out-of-band stores used by middleware and background workers.
type storage struct {
	factory     uow.UoWFactory
	relay       infraoutbox.Store
	flush       appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	inbox       kafka.Inbox
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}, logger: logger}
	for _, warning := range cfg.Warnings() {
		logger.Warn("config.unsafe_setting", "detail", warning)
	}

	st, err := app.openStorage(ctx, cfg)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		if rdb, err = redislock.NewClient(ctx, cfg.RedisURL); err != nil {
			app.close(ctx)
			return nil, err
		}
		app.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
	}

	var locker locks.Locker = memory.NewPropertyLocks(cfg.LockWaitTimeout)
	if cfg.LockDriver == config.DriverRedis {
		locker = redislock.NewLocker(rdb, cfg.LockWaitTimeout, cfg.LockTTL, logger)
	}

	var calendars policies.CalendarStore
	if cfg.S3Enabled() {
		store, err := s3.NewCalendarStore(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			app.close(ctx)
			return nil, err
		}
		calendars = store
		app.checks["s3"] = store.Ping
	}

	validator := domainavailability.Validator{BlocksCheckBookings: cfg.BlocksCheckBookings, Logger: logger}
	encoder := appoutbox.JSONEventEncoder{}
	structValidator := validation.NewStructValidator()

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	bookingapp.Register(commandBus, queryBus, &bookingapp.Lifecycle{
		UoWFactory: st.factory,
		Locks:      locker,
		Validator:  validator,
		Encoder:    encoder,
		Logger:     logger,
		NewID:      uuid.NewString,
	})
	blockapp.Register(commandBus, queryBus, &blockapp.Lifecycle{
		UoWFactory: st.factory,
		Locks:      locker,
		Validator:  validator,
		Encoder:    encoder,
		Logger:     logger,
		NewID:      uuid.NewString,
	})
	commands.RegisterHandler[availabilityapp.ExportCalendarCommand, *dto.CalendarExport](commandBus, &availabilityapp.ExportCalendarHandler{
		UoWFactory: st.factory,
		Store:      calendars,
		Logger:     logger,
	})
	queries.RegisterHandler[availabilityapp.CheckAvailabilityQuery, dto.Availability](queryBus, &availabilityapp.CheckAvailabilityHandler{UoWFactory: st.factory, Validator: validator})
	queries.RegisterHandler[availabilityapp.GetCalendarQuery, dto.Calendar](queryBus, &availabilityapp.GetCalendarHandler{UoWFactory: st.factory})
	queries.RegisterHandler[properties.GetPropertyQuery, dto.Property](queryBus, &properties.GetPropertyHandler{UoWFactory: st.factory})

	adminBus := commands.NewInMemoryBus()
	commands.RegisterHandler[properties.RegisterPropertyCommand, *dto.Property](adminBus, &properties.RegisterPropertyHandler{Encoder: encoder, Logger: logger})

	commandMWs := []middleware.CommandMiddleware{
		middleware.Logging(logger),
		middleware.Validation(structValidator),
		middleware.Idempotency(st.idempotency, nil),
	}
	adminMWs := []middleware.CommandMiddleware{
		middleware.Logging(logger),
		middleware.Validation(structValidator),
	}
	if st.flush != nil {
		commandMWs = append(commandMWs, middleware.OutboxFlush(st.flush))
		adminMWs = append(adminMWs, middleware.OutboxFlush(st.flush))
	}
	adminMWs = append(adminMWs, middleware.Transaction(st.factory, nil))

	commandsWithMW := middleware.ChainCommands(commandBus, commandMWs...)
	app.admin = middleware.ChainCommands(adminBus, adminMWs...)
	queriesWithMW := middleware.ChainQueries(queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(structValidator),
	)

	rateLimit, err := ginserver.NewRateLimiter(cfg.RateLimit, redisOrNil(rdb))
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	app.handlers = ginserver.Handlers{
		Booking:   ginserver.BookingHandler{Commands: commandsWithMW, Queries: queriesWithMW, Logger: logger},
		Block:     ginserver.BlockHandler{Commands: commandsWithMW, Queries: queriesWithMW, Logger: logger},
		Property:  ginserver.PropertyHandler{Admin: app.admin, Commands: commandsWithMW, Queries: queriesWithMW, Logger: logger},
		RateLimit: rateLimit,
	}

	if err := app.startMessaging(cfg, st); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *application) openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, fmt.Errorf("mongo: connect: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.checks["mongo"] = client.Ping
		if err := client.EnsureIndexes(ctx); err != nil {
			return storage{}, fmt.Errorf("mongo: ensure indexes: %w", err)
		}
		idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return storage{}, err
		}
		inbox, err := mongodb.NewInboxStore(ctx, client.DB, cfg.KafkaConsumerGroup)
		if err != nil {
			return storage{}, err
		}
		return storage{
			factory:     mongodb.NewFactory(client.DB),
			relay:       mongodb.NewOutboxStore(client.DB),
			idempotency: idem,
			inbox:       inbox,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return storage{}, err
		}
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })
		a.checks["postgres"] = pool.Ping
		if err := postgres.Migrate(ctx, pool); err != nil {
			return storage{}, err
		}
		return storage{
			factory:     postgres.NewFactory(pool),
			relay:       postgres.NewOutboxStore(pool),
			idempotency: postgres.NewIdempotencyStore(pool, cfg.IdempotencyTTL),
			inbox:       memory.NewInbox(),
		}, nil

	default:
		box := memory.NewOutbox()
		return storage{
			factory: memory.Factory{
				PropertiesRepo: memory.NewPropertyRepository(),
				BookingsRepo:   memory.NewBookingRepository(),
				BlocksRepo:     memory.NewBlockRepository(),
				Box:            box,
			},
			relay:       box,
			flush:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			inbox:       memory.NewInbox(),
		}, nil
	}
}

// startMessaging always runs the outbox relay; without Kafka it publishes to the log.
func (a *application) startMessaging(cfg config.Config, st storage) error {
	worker := &infraoutbox.Worker{
		Store:       st.relay,
		Producer:    infraoutbox.LogProducer{Logger: a.logger},
		Logger:      a.logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "app://bookingcore",
		Backoff:     cfg.RetryBackoff,
	}
	if !cfg.KafkaEnabled() {
		a.background = append(a.background, worker.Run)
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, "bookingcore", nil)
	if err != nil {
		return fmt.Errorf("kafka: producer: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
	worker.Producer = producer

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, &kafka.PropertyIngestHandler{
		Bus:    a.admin,
		Inbox:  st.inbox,
		Logger: a.logger,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("kafka: consumer: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })

	topics := []string{cfg.KafkaPropertyTopic}
	a.background = append(a.background, worker.Run, func(ctx context.Context) error {
		return consumer.Run(ctx, topics)
	})
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *application) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && a.logger != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}

func redisOrNil(c *goredis.Client) goredis.UniversalClient {
	if c == nil {
		return nil
	}
	return c
}
