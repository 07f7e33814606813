package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/research/internal/config"
	"github.com/emrgen/research/internal/jobs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Start runs the background worker: the scheduled source dedup and the metrics endpoint.
// It blocks until the process is interrupted.
func Start(cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logrus.Errorf("error closing app: %v", err)
		}
	}()

	if err := app.Store.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	executor := jobs.NewTaskExecutor(
		jobs.NewSourceDedupTask(cfg.SourceMergeSchedule, 30*time.Minute, app.Sources),
	)
	if err := executor.Start(); err != nil {
		return err
	}

	// listen for interrupt signal to gracefully shut down the worker
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	defer signal.Stop(sigs)

	return serve(cfg.MetricsAddr, executor, sigs)
}

// serve exposes the metrics endpoint until a signal arrives or the listener fails.
// The executor is stopped either way.
func serve(addr string, executor *jobs.TaskExecutor, sigs <-chan os.Signal) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	metricsServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting metrics server on: ", addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		logrus.Infof("metrics server stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the worker")

	select {
	case <-sigs:
		// clean Ctrl+C output
		fmt.Println()
	case err := <-serveErr:
		executor.Stop()
		wg.Wait()
		return fmt.Errorf("metrics server: %w", err)
	}

	executor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		logrus.Errorf("error stopping metrics server: %v", err)
	}

	wg.Wait()

	return nil
}
