package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventdesk/server/internal/blob"
	"github.com/eventdesk/server/internal/config"
	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
	"github.com/eventdesk/server/internal/storage/postgres"
)

const connectTimeout = 10 * time.Second

// app is the wiring shared by serve and the administrative commands.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
	repo   *postgres.Repository

	events    *events.Service
	customers *customers.Service
	directory *directory.Service
}

// openApp connects to the database and builds the domain services. The
// caller must call close.
func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := config.NewLogger(cfg.Logging)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	pool, err := postgres.NewPool(connectCtx, cfg.Database.URL, cfg.Database.MaxConnections)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg.Blob)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		repo:   repo,
		events: events.NewService(repo.Events(), blobs, logger,
			events.WithLocation(cfg.Events.Location())),
		customers: customers.NewService(repo.Customers(), logger),
		directory: directory.NewService(repo.Directory(), logger),
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}

// newBlobStore picks the image payload backend named in the config.
func newBlobStore(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "file":
		store, err := blob.NewFileStore(cfg.Directory)
		if err != nil {
			return nil, fmt.Errorf("open blob directory: %w", err)
		}
		return store, nil
	case "s3":
		store, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			User:     cfg.S3User,
			Password: cfg.S3Password,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return store, nil
	case "memory":
		return blob.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.Backend)
	}
}

// parseID reads a positive numeric id argument.
func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, value)
	}
	return id, nil
}

// runWithApp adapts a command body that needs the database into a RunE.
func runWithApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a, args)
	}
}
