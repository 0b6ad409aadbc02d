package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isaacrego/plex-poster-display/api"
	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/handlers"
	"github.com/isaacrego/plex-poster-display/internal/docstore"
	"github.com/isaacrego/plex-poster-display/internal/logging"
	"github.com/isaacrego/plex-poster-display/services/cache"
	"github.com/isaacrego/plex-poster-display/services/plex"
	"github.com/isaacrego/plex-poster-display/services/scheduler"
	"github.com/isaacrego/plex-poster-display/services/status"
	"github.com/isaacrego/plex-poster-display/utils"
)

func main() {
	configFile := flag.String("config", "", "path to poster.yaml (default: ./poster.yaml or /etc/poster-display/poster.yaml)")
	flag.Parse()

	rt, err := config.LoadRuntime(*configFile)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	closer, err := logging.Setup(rt.Log)
	if err != nil {
		log.Fatalf("[main] log setup: %v", err)
	}
	defer closer.Close()

	log.Printf("[main] poster display %s starting, data dir %s", handlers.Version(), rt.DataDir)

	storeOpts := []docstore.Option{docstore.WithLockWait(rt.LockWait)}

	settings, err := config.NewManager(rt.SettingsPath(), storeOpts...)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	cacheSvc, err := cache.NewService(rt.CachePath(), storeOpts...)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources := plex.NewFactory(rt.MediaTimeout)
	refresher := scheduler.NewService(settings, cacheSvc, sources, rt.RefreshInterval)
	resolver := status.NewResolver(settings, cacheSvc, sources)

	router := utils.NewRouter()
	handlers.Register(router, handlers.Handlers{
		Status:    handlers.NewStatusHandler(resolver),
		Settings:  handlers.NewSettingsHandler(settings, refresher, sources),
		Libraries: handlers.NewLibrariesHandler(settings, sources),
		Refresh:   handlers.NewRefreshHandler(refresher),
		Cache:     handlers.NewCacheHandler(cacheSvc),
		Artwork:   handlers.NewArtworkHandler(settings, sources),
		Version:   handlers.NewVersionHandler(),
		Logs:      handlers.NewLogsHandler(rt.Log.File),
	}, api.PerMinute(ctx, rt.Refresh.RatePerMinute))

	if err := refresher.Start(ctx); err != nil {
		log.Fatalf("[main] start scheduler: %v", err)
	}

	srv := &http.Server{
		Addr:              rt.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", rt.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[main] server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] http shutdown: %v", err)
	}
	if err := refresher.Stop(shutdownCtx); err != nil {
		log.Printf("[main] scheduler shutdown: %v", err)
	}
}
