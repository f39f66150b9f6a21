package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminpanel/pkg/config"
	"adminpanel/pkg/logging"
	"adminpanel/pkg/notify"
	"adminpanel/pkg/records"
	"adminpanel/pkg/vault"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Vault change notifications are forwarded to websocket clients on this channel.
const (
	filesChannel      = "files-channel"
	eventFilesChanged = "files-changed"
)

// app holds everything the handlers need.
type app struct {
	cfg      *config.Config
	log      logging.Logger
	records  records.Store
	notifier notify.Notifier
	hub      *notify.Hub
	storage  vault.Storage
	vault    *vault.Service
	feed     vault.ChangeFeed
	accounts accounts
	tokens   *tokenIssuer
	metrics  *metrics
	redis    *redis.Client
	upgrader websocket.Upgrader

	retryPause time.Duration
}

func main() {
	cfg := config.Load()
	log := logging.NewJSON(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// `adminpanel migrate` runs migrations and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		db, err := openDB(ctx, cfg, log)
		if err != nil {
			log.Error(ctx, "migrate failed", "err", err)
			os.Exit(1)
		}
		if _, err := seedAdmin(ctx, gormAccounts{db: db}, cfg.AdminPassword); err != nil {
			log.Error(ctx, "seed failed", "err", err)
			os.Exit(1)
		}
		fmt.Println("migration and seeding completed")
		return
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "err", err)
		os.Exit(1)
	}
	a.background(ctx)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	a.setupRoutes(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "shutdown", "err", err)
		}
	}()

	log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "store", cfg.RecordStore)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "server stopped", "err", err)
		os.Exit(1)
	}
}

// newApp wires stores, notifier and vault for the configured mode.
func newApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: newMetrics(),
		tokens: &tokenIssuer{
			secret:     []byte(cfg.JWTSecret),
			accessTTL:  cfg.AccessTTL,
			refreshTTL: cfg.RefreshTTL,
			now:        time.Now,
		},
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		retryPause: 5 * time.Second,
	}
	a.hub = notify.NewHub(notify.WithDropHook(func(channel, event string) {
		a.metrics.droppedEvents.WithLabelValues(channel).Inc()
	}))
	a.notifier = a.hub

	switch cfg.RecordStore {
	case "memory":
		feed := vault.NewLocalFeed()
		a.records = records.NewMemoryStore()
		a.accounts = &memoryAccounts{}
		a.storage = vault.NewMemoryStorage("/vault/objects")
		a.vault = vault.NewService(a.storage, vault.NewMemoryMeta(feed))
		a.feed = feed
	case "postgres", "":
		db, err := openDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		svc, storage, feed, err := vault.OpenPostgres(ctx, db, cfg)
		if err != nil {
			return nil, err
		}
		a.records = records.NewGormStore(db)
		a.accounts = gormAccounts{db: db}
		a.storage = storage
		a.vault = svc
		a.feed = feed
	default:
		return nil, fmt.Errorf("unknown RECORD_STORE %q", cfg.RecordStore)
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.notifier = notify.NewRedisNotifier(a.redis)
	}

	created, err := seedAdmin(ctx, a.accounts, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info(ctx, "seeded admin account", "username", "admin")
	}
	return a, nil
}

// background starts the goroutines that live as long as ctx.
func (a *app) background(ctx context.Context) {
	if a.redis != nil {
		go a.relayEvents(ctx)
	}
	go a.bridgeFileChanges(ctx)
}

// relayEvents feeds Redis messages into the local hub, resubscribing after a
// pause whenever the subscription ends.
func (a *app) relayEvents(ctx context.Context) {
	for {
		err := notify.Relay(ctx, a.redis, a.hub, func(err error) {
			a.log.Warn(ctx, "relay frame dropped", "err", err)
		}, notify.StudentsChannel)
		if ctx.Err() != nil {
			return
		}
		a.metrics.relayRestarts.Inc()
		a.log.Warn(ctx, "redis relay ended, resubscribing", "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.retryPause):
		}
	}
}

// bridgeFileChanges republishes vault change notifications to websocket
// clients. A broken feed connection is retried after a pause.
func (a *app) bridgeFileChanges(ctx context.Context) {
	for {
		err := a.feed.Listen(ctx, func() {
			_ = a.hub.Publish(ctx, filesChannel, eventFilesChanged, struct{}{})
		})
		if ctx.Err() != nil {
			return
		}
		a.log.Warn(ctx, "file change feed ended", "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.retryPause):
		}
	}
}
