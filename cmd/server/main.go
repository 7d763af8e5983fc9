package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/guileen/nativeplan/api"
	"github.com/guileen/nativeplan/catalog"
	"github.com/guileen/nativeplan/logger"
	"github.com/guileen/nativeplan/offload"
	"github.com/guileen/nativeplan/sql"
	"github.com/guileen/nativeplan/storage"
)

func main() {
	dbPath := "/tmp/nativeplan"
	if v := os.Getenv("NATIVEPLAN_DB_PATH"); v != "" {
		dbPath = v
	}
	if len(os.Args) > 1 && os.Args[1][0] != '-' {
		dbPath = os.Args[1]
	}

	addr := ":8090"
	if v := os.Getenv("NATIVEPLAN_ADDR"); v != "" {
		addr = v
	}

	logger.Info("starting nativeplan server", "db_path", dbPath, "addr", addr)

	kvStore, err := storage.NewPebbleKV(storage.DefaultPebbleConfig(dbPath))
	if err != nil {
		logger.Error("failed to open pebble store", "error", err, "db_path", dbPath)
		os.Exit(1)
	}
	defer kvStore.Close()

	cat := catalog.NewManager(kvStore)
	planner := sql.NewPlanner(cat)
	adapter := offload.NewAdapter(offload.NewColumnarResolver(), offload.NewTagSet())
	handler := api.NewPlanHandler(planner, adapter)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
