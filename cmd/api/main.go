package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"example.com/workout/internal/api"
	"example.com/workout/internal/auth"
	"example.com/workout/internal/config"
	"example.com/workout/internal/domain"
	"example.com/workout/internal/identity"
	"example.com/workout/internal/outbox"
	persistence "example.com/workout/internal/persistence/postgres"
	"example.com/workout/internal/stats"
	httptransport "example.com/workout/internal/transport/http"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, log)
	go dispatcher.Start(ctx)

	service := domain.NewService(repo)
	verifier := identity.NewClient(cfg.IdentityURL, cfg.IdentityTimeout)

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.SessionTTL}
	goalCfg := stats.GoalConfig{
		WeeklyTarget:     cfg.GoalWeeklyTarget,
		VolumeCap:        cfg.GoalVolumeCap,
		VolumeMultiplier: cfg.GoalVolumeMultiplier,
		VolumeWindow:     stats.DefaultGoalConfig().VolumeWindow,
		LiftMatch:        cfg.GoalLiftMatch,
		LiftLabel:        cfg.GoalLiftLabel,
		LiftTargetKg:     cfg.GoalLiftTargetKg,
	}

	handler := api.NewHandler(service, verifier, authCfg, goalCfg, log)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Basic request logger
	requestLog := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Info("request")
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(authCfg, func(r *http.Request) bool {
		switch {
		case r.URL.Path == "/healthz",
			r.URL.Path == "/metrics",
			strings.HasPrefix(r.URL.Path, "/v1/auth/"):
			return true
		}
		return false
	})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, requestLog(cors(authMiddleware.Wrap(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("address", cfg.HTTPAddress).Info("workout-service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}

	dispatcher.Wait()
}
