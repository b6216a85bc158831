// @title                       DevCamper API
// @version                     1.0
// @description                 Bootcamp directory backend: bootcamps, courses, reviews, users and authentication.
// @host                        localhost:5000
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/devcamper/devcamper-api/internal/api"
	"github.com/devcamper/devcamper-api/internal/api/handler"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/service"
	mongodb "github.com/devcamper/devcamper-api/internal/infrastructure/db/mongo"
	redisdb "github.com/devcamper/devcamper-api/internal/infrastructure/db/redis"
	"github.com/devcamper/devcamper-api/internal/infrastructure/geocode"
	"github.com/devcamper/devcamper-api/internal/infrastructure/mail"
	"github.com/devcamper/devcamper-api/internal/infrastructure/queue"
	"github.com/devcamper/devcamper-api/internal/infrastructure/storage"
	"github.com/devcamper/devcamper-api/internal/pkg/config"
	"github.com/devcamper/devcamper-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "devcamper-api"}).Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		Service:    "devcamper-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	users := mongodb.NewUserRepository(db)
	bootcamps := mongodb.NewBootcampRepository(db)
	courses := mongodb.NewCourseRepository(db)
	reviews := mongodb.NewReviewRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, bootcamps, courses, reviews); err != nil {
		return err
	}

	// --- Integrations ---
	geocoder := geocode.NewCached(
		geocode.NewMapQuest(cfg.Geocoder.APIKey),
		redisdb.NewGeocodeCache(rdb),
		cfg.Geocoder.CacheTTL,
		log,
	)

	var mailer ports.Mailer
	if cfg.SMTP.Host == "" {
		log.Warn().Msg("SMTP_HOST not set, reset emails will be logged instead of sent")
		mailer = mail.NewLogMailer(log)
	} else {
		smtp, err := mail.NewSMTPMailer(mail.Config{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.FromEmail,
			FromName:  cfg.SMTP.FromName,
		})
		if err != nil {
			return err
		}
		mailer = smtp
	}

	photos, err := storage.NewDiskStore(cfg.Upload.Path)
	if err != nil {
		return err
	}

	if cfg.PublicURL == "" && cfg.IsProduction() {
		log.Warn().Msg("PUBLIC_URL not set, reset links will use the request Host header")
	}

	// --- Aggregate workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	aggregates := service.NewAggregateService(bootcamps, courses, reviews, log)
	dispatcher := queue.NewDispatcher(cfg.AggregateWorkers, aggregates, log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:             log,
		JWTSecret:       cfg.Auth.JWTSecret,
		Cookie:          handler.CookieConfig{TTL: cfg.Auth.CookieTTL(), Secure: cfg.IsProduction()},
		PublicURL:       cfg.PublicURL,
		Users:           users,
		Limiter:         redisdb.NewRateCounter(rdb),
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		Auth:            service.NewAuthService(users, mailer, cfg.Auth.JWTSecret, cfg.Auth.JWTExpire, log),
		Bootcamps:       service.NewBootcampService(bootcamps, courses, reviews, geocoder, photos, cfg.Upload.MaxSize, log),
		Courses:         service.NewCourseService(courses, bootcamps, dispatcher, log),
		Reviews:         service.NewReviewService(reviews, bootcamps, dispatcher, log),
		UserAdmin:       service.NewUserService(users, log),
		UploadDir:       photos.Dir(),
		MaxUpload:       cfg.Upload.MaxSize,
		Readiness: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
