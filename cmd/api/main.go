package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/platformlab/identity-service/internal/api"
	"github.com/platformlab/identity-service/internal/core/crypto"
	"github.com/platformlab/identity-service/internal/core/domain"
	"github.com/platformlab/identity-service/internal/core/ports"
	"github.com/platformlab/identity-service/internal/core/service"
	"github.com/platformlab/identity-service/internal/infrastructure/config"
	"github.com/platformlab/identity-service/internal/infrastructure/db/memory"
	mongostore "github.com/platformlab/identity-service/internal/infrastructure/db/mongo"
	redisstore "github.com/platformlab/identity-service/internal/infrastructure/db/redis"
	"github.com/platformlab/identity-service/internal/infrastructure/queue"
	"github.com/platformlab/identity-service/internal/seed"
	"github.com/platformlab/identity-service/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("configuration failed")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	deps := buildDependencies(ctx, cfg, log)
	deps.Log = log

	e := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.Store).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	cancel() // stops dispatcher workers
	log.Info().Msg("shutdown complete")
}

// buildDependencies wires the credential store, services, and audit
// pipeline for the selected backend.
func buildDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) api.Dependencies {
	var (
		store    ports.CredentialStore
		audit    ports.AuditSink
		mongoDB  *gomongo.Database
		redisCli *goredis.Client
	)

	switch cfg.Store {
	case "memory":
		store = memory.NewStore()
		audit = noopAudit{}
		log.Warn().Msg("using in-memory credential store; data will not survive restarts")

	default:
		_, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		mongoDB = db

		credStore := mongostore.NewCredentialStore(db)
		if err := credStore.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}

		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		redisCli = rdb

		store = redisstore.NewCachedCredentialStore(credStore, rdb, cfg.Redis.UserCacheTTL, log)

		dispatcher := queue.NewDispatcher(0, mongostore.NewAuditRepository(db), log)
		dispatcher.Start(ctx)
		audit = dispatcher
	}

	hasher := crypto.NewBcryptHasher(bcrypt.DefaultCost)
	identity := service.NewIdentityService(store, hasher, log)
	tokens := service.NewTokenService(store, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	if cfg.Auth.SeedEnabled {
		if err := seed.Run(ctx, identity, log); err != nil {
			log.Error().Err(err).Msg("fixture seeding failed")
		}
	}

	return api.Dependencies{
		Identity: identity,
		Tokens:   tokens,
		Audit:    audit,
		Mongo:    mongoDB,
		Redis:    redisCli,
	}
}

// noopAudit discards events in memory-store mode.
type noopAudit struct{}

func (noopAudit) Record(domain.AuthEvent) {}
