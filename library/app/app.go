package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/digital-library/library/config"
	"github.com/Astemirdum/digital-library/library/internal/cache"
	"github.com/Astemirdum/digital-library/library/internal/handler"
	"github.com/Astemirdum/digital-library/library/internal/repository"
	"github.com/Astemirdum/digital-library/library/internal/server"
	"github.com/Astemirdum/digital-library/library/internal/service"
	"github.com/Astemirdum/digital-library/library/migrations"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/Astemirdum/digital-library/pkg/circuit_breaker"
	"github.com/Astemirdum/digital-library/pkg/kafka"
	"github.com/Astemirdum/digital-library/pkg/logger"
	"github.com/Astemirdum/digital-library/pkg/postgres"
	"github.com/Astemirdum/digital-library/pkg/redis"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	ctx := context.Background()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, &migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	issuer := auth.NewIssuer(cfg.Auth)
	opts := []service.Option{
		service.WithPolicy(service.Policy{
			LoanPeriod: cfg.Lending.LoanPeriod,
			FinePerDay: cfg.Lending.FinePerDay,
		}),
	}

	publisher := kafka.NewNoopPublisher()
	if cfg.Kafka.Enable {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		const (
			recordLength     = 10
			openTimeout      = 30 * time.Second
			failurePercent   = 0.5
			recoveryRequests = 3
		)
		cb := circuit_breaker.New(recordLength, openTimeout, failurePercent, recoveryRequests)
		publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic, cb)
		log.Info("borrow events enabled", zap.Strings("brokers", cfg.Kafka.Addrs), zap.String("topic", cfg.Kafka.Topic))
	}
	opts = append(opts, service.WithPublisher(publisher))

	if cfg.Redis.Enabled() {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis.NewClient", zap.Error(err))
		}
		defer client.Close()
		opts = append(opts, service.WithStatsCache(cache.NewStatsCache(client, cfg.Redis.TTL)))
	}

	svc := service.NewService(repo, issuer, log, opts...)

	if created, err := svc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Warn("could not ensure default admin", zap.Error(err))
	} else if created {
		log.Info("default admin created", zap.String("email", cfg.Admin.Email))
	}

	h := handler.New(svc, issuer, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err = publisher.Close(); err != nil {
		log.Warn("publisher.Close", zap.Error(err))
	}
	if err = db.Close(); err != nil {
		log.Warn("db.Close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
