package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/steveyiyo/jarvis-backend/internal/config"
	"github.com/steveyiyo/jarvis-backend/internal/core/eyecontact"
	"github.com/steveyiyo/jarvis-backend/internal/core/gemini"
	"github.com/steveyiyo/jarvis-backend/internal/detector"
	h "github.com/steveyiyo/jarvis-backend/internal/http"
	"github.com/steveyiyo/jarvis-backend/internal/logging"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		logrus.Fatal(err)
	}
	defer closer.Close()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var llm gemini.Completer
	if client, err := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, log); err != nil {
		log.WithError(err).Warn("gemini unavailable, replies will use the fallback text")
		llm = gemini.Unavailable{}
	} else {
		defer client.Close()
		llm = client
	}

	dcfg := detector.DefaultConfig()
	dcfg.Script = cfg.MediaPipeScript
	dcfg.Python = cfg.PythonBin
	det, err := detector.NewMediaPipeDetector(dcfg, log)
	if err != nil {
		log.WithError(err).Fatal("face mesh detector")
	}
	if err := det.Start(); err != nil {
		log.WithError(err).Fatal("start face mesh detector")
	}
	defer det.Close()

	r := h.NewRouter(cfg, h.Deps{
		Log:      log,
		LLM:      llm,
		Analyzer: eyecontact.NewAnalyzer(det, log),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}
