// Package server wires configuration, storage, services and transports
// together and runs the EduPlatform API until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/eduplatform/internal/logging"
	"github.com/dmitrijs2005/eduplatform/internal/server/auth"
	"github.com/dmitrijs2005/eduplatform/internal/server/config"
	"github.com/dmitrijs2005/eduplatform/internal/server/httpapi"
	"github.com/dmitrijs2005/eduplatform/internal/server/ratelimit"
	"github.com/dmitrijs2005/eduplatform/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eduplatform/internal/server/services"
	"github.com/dmitrijs2005/eduplatform/internal/server/storage"

	gs "github.com/dmitrijs2005/eduplatform/internal/server/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	handler *httpapi.Handlers
	tokens  *auth.TokenManager
}

// NewApp validates c, opens the database (applying migrations when enabled)
// and builds every service. A configuration problem is returned as an error
// wrapping common.ErrorConfiguration and must abort startup.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:   []byte(c.JWTSecret),
		Issuer:   c.JWTIssuer,
		Audience: c.JWTAudience,
		TTL:      c.TokenValidityDuration,
	})
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info(ctx, "migrations applied")
	}

	app := &App{config: c, logger: logger, db: db, tokens: tokens}

	var limiter services.LoginLimiter
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
		limiter = ratelimit.NewLoginLimiter(app.redis, ratelimit.Config{
			MaxAttempts: c.LoginMaxAttempts,
			Window:      c.LoginWindow,
		})
	} else {
		logger.Warn(ctx, "redis address not set, login throttling disabled")
	}

	var presigner services.ObjectPresigner
	if c.MediaEnabled() {
		p, err := storage.NewS3Presigner(ctx, storage.S3Config{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		presigner = p
	} else {
		logger.Warn(ctx, "s3 bucket not set, course media disabled")
	}

	app.handler = &httpapi.Handlers{
		Users:       services.NewUserService(db, rm, auth.NewPasswordHasher(0), tokens, limiter, logger),
		Courses:     services.NewCourseService(db, rm, logger),
		Assessments: services.NewAssessmentService(db, rm, logger),
		Results:     services.NewResultService(db, rm, logger),
		Media:       services.NewMediaService(db, rm, presigner, c.S3PresignTTL, logger),
		DB:          db,
		Logger:      logger,
	}

	return app, nil
}

// Close releases the database pool and the redis client.
func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	errs = append(errs, app.db.Close())
	return errors.Join(errs...)
}

// Run serves HTTP and, when configured, the gRPC health service until ctx is
// cancelled or SIGINT/SIGTERM/SIGQUIT arrives. The first server failure stops
// the others.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	router := httpapi.NewRouter(app.handler, httpapi.RouterConfig{
		Tokens:         app.tokens,
		AllowedOrigins: app.config.AllowedOrigins,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger).Run(ctx)
	})

	if app.config.EndpointAddrGRPC != "" {
		g.Go(func() error {
			return gs.NewHealthServer(app.config.EndpointAddrGRPC, app.db, healthCheckInterval, app.logger).Run(ctx)
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}
	app.logger.Info(context.Background(), "app stopped")
	return err
}
