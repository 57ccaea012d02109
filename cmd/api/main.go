package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"supernova.org/internal/auth"
	"supernova.org/internal/cart"
	"supernova.org/internal/config"
	"supernova.org/internal/httpapi"
	"supernova.org/internal/images"
	"supernova.org/internal/obs"
	"supernova.org/internal/product"
	"supernova.org/internal/revocation"
	"supernova.org/internal/session"
	"supernova.org/internal/store"
	"supernova.org/internal/user"
)

var (
	version = "0.3.0"
	commit  = "none"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if cfg.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	var ledger revocation.Ledger
	if cfg.RedisAddr != "" {
		redisLedger := revocation.NewRedisLedger(cfg.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisLedger.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("redis ping: %v", err)
		}
		cancel()
		defer redisLedger.Close()
		ledger = redisLedger
	} else {
		// Single-process fallback. Revocations do not survive a restart and
		// do not propagate across replicas.
		log.Println("REDIS_ADDR not set, using in-process revocation ledger")
		ledger = revocation.NewMemoryLedger()
	}

	var imageStore images.Store
	if cfg.Minio.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := images.NewMinioStore(ctx, images.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		cancel()
		if err != nil {
			log.Fatalf("object storage: %v", err)
		}
		imageStore = minioStore
	} else {
		log.Println("MINIO_ENDPOINT not set, image upload disabled")
	}

	codec, err := auth.NewCodec(cfg.AuthSecret)
	if err != nil {
		log.Fatalf("codec: %v", err)
	}
	users := user.NewPGStore(db)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, httpapi.Deps{
		Users:      users,
		Products:   product.NewPGStore(db),
		Carts:      cart.NewPGStore(db),
		Images:     imageStore,
		Issuer:     session.NewIssuerTTL(codec, cfg.SessionTTL),
		Verifier:   session.NewVerifier(codec, ledger, users),
		Terminator: session.NewTerminator(codec, ledger),
	})

	handler := httpapi.MaxBodyBytes(api.Handler(), cfg.MaxBodyBytes)
	handler = httpapi.RateLimit(handler, cfg.RateLimitBurst, cfg.RateLimitRPS)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting supernova-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}
