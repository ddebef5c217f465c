package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectscope/estimation-service/internal/bootstrap"
	"github.com/projectscope/estimation-service/internal/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "estimation-worker", cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.WorkerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()

	analysisTimeout := time.Duration(cfg.AnalysisTimeoutSeconds) * time.Second

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeAnalysisSubmitted(ctx, func(handlerCtx context.Context, analysisID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, analysisTimeout)
		defer cancel()

		app.WorkerMetrics.StartAnalysis()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, analysisID)
		app.WorkerMetrics.FinishAnalysis(time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
