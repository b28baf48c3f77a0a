package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-feed/internal/calendar"
	"github.com/iliyamo/event-feed/internal/config"
	"github.com/iliyamo/event-feed/internal/database"
	"github.com/iliyamo/event-feed/internal/handler"
	"github.com/iliyamo/event-feed/internal/middleware"
	"github.com/iliyamo/event-feed/internal/queue"
	"github.com/iliyamo/event-feed/internal/repository"
	"github.com/iliyamo/event-feed/internal/repository/memory"
	"github.com/iliyamo/event-feed/internal/router"
	"github.com/iliyamo/event-feed/internal/scheduler"
	"github.com/iliyamo/event-feed/internal/service"
)

// store bundles the persistence collaborators of the service.
type store struct {
	deps  service.Deps
	ping  handler.Check
	close func()
}

func openStore(ctx context.Context, cfg config.Config) store {
	if cfg.Store == config.StoreMemory {
		m := memory.New()
		log.Printf("store: in-memory (data is lost on exit)")
		return store{
			deps:  service.Deps{Events: m, Tags: m, Profiles: m, Comments: m, Notifications: m},
			ping:  m.Ping,
			close: func() {},
		}
	}

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		Location: cfg.Location,
	})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	tags := repository.NewTagRepo(db)
	return store{
		deps: service.Deps{
			Events:        repository.NewEventRepo(db),
			Tags:          tags,
			Profiles:      repository.NewProfileRepo(db),
			Comments:      repository.NewCommentRepo(db),
			Notifications: repository.NewNotificationRepo(db),
		},
		ping:  db.PingContext,
		close: func() { _ = db.Close() },
	}
}

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.LoadFeedSettings(cfg.FeedSettingsPath)
	if err != nil {
		log.Fatalf("feed settings: %v", err)
	}

	st := openStore(ctx, cfg)
	defer st.close()

	deps := st.deps
	deps.Defaults = settings.Defaults
	deps.Location = cfg.Location
	if cfg.AMQPURL != "" {
		deps.Publisher = queue.NewPublisher(cfg.AMQPURL, cfg.CommentQueue)
	}
	svc := service.New(deps)

	checks := map[string]handler.Check{"store": st.ping}
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Printf("redis: unavailable, caching and rate limiting disabled")
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	if cfg.AMQPURL != "" {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.CommentQueue, deps.Notifications)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("queue: consumer stopped: %v", err)
			}
		}()
	}

	var sched *scheduler.Scheduler
	if cfg.ReminderCron != "" {
		sched, err = scheduler.New(cfg.ReminderCron, cfg.Location, svc, cfg.ReminderWindow)
		if err != nil {
			log.Fatal(err)
		}
		sched.Start()
	}

	ev := &handler.EventHandler{
		Svc:          svc,
		Settings:     settings,
		CalendarOpts: calendar.Options{BaseURL: cfg.PublicURL},
		Cache:        cache,
	}
	cm := &handler.CommentHandler{Svc: svc, Cache: cache}
	nt := &handler.NotificationHandler{Svc: svc}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	router.RegisterRoutes(e, handler.Ready(checks))
	router.RegisterPublic(e, ev, cm, cache)
	router.RegisterAuthenticated(e, ev, cm, nt, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, store=%s, tz=%s)", addr, cfg.Env, cfg.Store, cfg.Location)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
