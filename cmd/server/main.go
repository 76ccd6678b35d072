package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/matda59/video-to-mp3-converter/internal/config"
	"github.com/matda59/video-to-mp3-converter/internal/handlers"
	"github.com/matda59/video-to-mp3-converter/internal/logging"
	"github.com/matda59/video-to-mp3-converter/internal/media"
	"github.com/matda59/video-to-mp3-converter/internal/status"
	"github.com/matda59/video-to-mp3-converter/internal/storage"
	"github.com/matda59/video-to-mp3-converter/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	for _, dir := range []string{cfg.UploadDir, cfg.ConvertedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		if db == nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("cannot open database")
		}
		// Keep serving: history operations will surface their own errors.
		log.Error().Err(err).Str("path", cfg.DatabasePath).Msg("database init failed")
	}
	defer db.Close()

	history := storage.NewHistoryRepository(db)
	if n, err := history.MarkOrphans(context.Background()); err != nil {
		log.Error().Err(err).Msg("orphan sweep failed")
	} else if n > 0 {
		log.Warn().Int64("count", n).Msg("marked orphaned jobs as error")
	}

	tracker := status.NewTracker()
	converter := media.NewConverter(cfg.FFmpegPath, cfg.FFprobePath)

	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize, converter, history, tracker, log)
	pool.Start(poolCtx)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	h := handlers.NewConvertHandler(history, tracker, pool, cfg.UploadDir, cfg.ConvertedDir)
	e.GET("/", h.Index)
	e.POST("/upload", h.Upload)
	e.GET("/status/:id", h.Status)
	e.GET("/download/:filename", h.Download)
	e.POST("/delete/:id", h.Delete)

	go func() {
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("addr", cfg.Addr).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// No new uploads can arrive now; drain queued jobs and finish in-flight ones.
	pool.Stop()
}
