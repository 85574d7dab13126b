package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/signageops/signage-service/internal/config"
	"github.com/signageops/signage-service/internal/events"
	displayHandlers "github.com/signageops/signage-service/internal/http/handlers/display"
	mediaHandlers "github.com/signageops/signage-service/internal/http/handlers/media"
	playlistHandlers "github.com/signageops/signage-service/internal/http/handlers/playlists"
	scheduleHandlers "github.com/signageops/signage-service/internal/http/handlers/schedules"
	"github.com/signageops/signage-service/internal/http/handlers/wsfeed"
	"github.com/signageops/signage-service/internal/http/middleware"
	"github.com/signageops/signage-service/internal/presence"
	"github.com/signageops/signage-service/internal/services/blob"
	"github.com/signageops/signage-service/internal/services/catalog"
	"github.com/signageops/signage-service/internal/services/playlists"
	"github.com/signageops/signage-service/internal/services/resolver"
	"github.com/signageops/signage-service/internal/services/schedules"
	"github.com/signageops/signage-service/internal/services/signals"
	"github.com/signageops/signage-service/internal/snapshot"
	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/sweeper"
	wsHub "github.com/signageops/signage-service/internal/websocket"
)

// presenceTTL is how long a display counts as online after its last
// heartbeat: three poll intervals.
const presenceTTL = 30 * time.Second

func main() {
	// load config
	cfg := config.MustLoad()

	// blob store setup
	blobs, err := blob.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob store:", err)
	}
	slog.Info("Connected to blob store", slog.String("bucket", cfg.MinIO.BucketName))

	// in-memory state, restored from the last snapshot
	st := store.New()
	snapshots := snapshot.NewService(cfg.Snapshot.Dir, st)
	if err := snapshots.LoadOnStartup(); err != nil {
		log.Fatal("Failed to load snapshot:", err)
	}

	// ops event feed
	hub := wsHub.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	// optional redis-backed presence mirror and admin rate limiting
	var tracker *presence.Tracker
	var limiter *middleware.RateLimiter
	// pres stays a nil interface when redis is unconfigured; assigning the
	// concrete tracker pointer unconditionally would wrap a nil pointer in a
	// non-nil interface and defeat the nil checks downstream
	var pres signals.Presence
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
		tracker = presence.NewTracker(redisClient, presenceTTL)
		pres = tracker
		limiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit.MutationsPerMinute)
		slog.Info("Connected to redis", slog.String("address", cfg.Redis.Address))
	}

	// services
	catalogSvc := catalog.NewService(st, blobs, snapshots, cfg.Media)
	playlistSvc := playlists.NewService(st, snapshots)
	scheduleSvc := schedules.NewService(st, snapshots)
	signalSvc := signals.NewService(st, snapshots, publisher, pres)
	resolverSvc := resolver.NewService(st, blobs)

	// mutation endpoints go through the rate limiter when redis is configured
	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if limiter == nil {
			return h
		}
		return limiter.Limit(h)
	}

	// setup router
	router := http.NewServeMux()

	router.HandleFunc("POST /api/media", limit(mediaHandlers.Upload(catalogSvc)))
	router.HandleFunc("GET /api/media", mediaHandlers.List(catalogSvc))
	router.HandleFunc("GET /api/media/{id}", mediaHandlers.Get(catalogSvc))
	router.HandleFunc("DELETE /api/media/{id}", limit(mediaHandlers.Delete(catalogSvc)))
	router.HandleFunc("POST /api/media/{id}/activate", limit(mediaHandlers.Activate(signalSvc)))
	router.HandleFunc("POST /api/media/deactivate", limit(mediaHandlers.Deactivate(signalSvc)))

	router.HandleFunc("POST /api/playlists", limit(playlistHandlers.Create(playlistSvc)))
	router.HandleFunc("GET /api/playlists", playlistHandlers.List(playlistSvc))
	router.HandleFunc("GET /api/playlists/{id}", playlistHandlers.Get(playlistSvc))
	router.HandleFunc("PUT /api/playlists/{id}", limit(playlistHandlers.Update(playlistSvc)))
	router.HandleFunc("DELETE /api/playlists/{id}", limit(playlistHandlers.Delete(playlistSvc)))

	router.HandleFunc("POST /api/schedules", limit(scheduleHandlers.Create(scheduleSvc)))
	router.HandleFunc("GET /api/schedules", scheduleHandlers.List(scheduleSvc))
	router.HandleFunc("GET /api/schedules/{id}", scheduleHandlers.Get(scheduleSvc))
	router.HandleFunc("PUT /api/schedules/{id}", limit(scheduleHandlers.Update(scheduleSvc)))
	router.HandleFunc("DELETE /api/schedules/{id}", limit(scheduleHandlers.Delete(scheduleSvc)))
	router.HandleFunc("POST /api/schedules/{id}/active", limit(scheduleHandlers.ToggleActive(scheduleSvc)))

	router.HandleFunc("GET /api/settings/display", displayHandlers.GetSettings(signalSvc))
	router.HandleFunc("PUT /api/settings/display", limit(displayHandlers.PutSettings(signalSvc)))
	router.HandleFunc("POST /api/display/reload", limit(displayHandlers.Reload(signalSvc)))
	router.HandleFunc("POST /api/display/stop", limit(displayHandlers.Stop(signalSvc)))
	router.HandleFunc("POST /api/display/resume", limit(displayHandlers.Resume(signalSvc)))

	router.HandleFunc("GET /api/display/content", displayHandlers.Content(resolverSvc))
	router.HandleFunc("POST /api/display/heartbeat", displayHandlers.Heartbeat(signalSvc))
	router.HandleFunc("GET /api/display/status", displayHandlers.Status(signalSvc, tracker))

	router.HandleFunc("GET /ws", wsfeed.Handler(hub))

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// background sweeper for stale display tracking state
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go sweeper.New(st, time.Duration(cfg.Sweeper.RetainDays)*24*time.Hour).Start(sweepCtx)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	cancelSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
