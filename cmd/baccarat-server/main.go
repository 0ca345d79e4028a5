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

	"github.com/anamarijapotokar/Baccarat/internal/api"
	"github.com/anamarijapotokar/Baccarat/internal/config"
	"github.com/anamarijapotokar/Baccarat/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	envFile := flag.String("env", ".env", "optional .env file")
	migrateOnly := flag.Bool("migrate", false, "apply migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if *migrateOnly {
		log.Printf("migrated driver=%s", cfg.DBDriver)
		return
	}

	server := api.NewServer(db, cfg)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening addr=%s driver=%s version=%s", cfg.Addr, cfg.DBDriver, api.EngineVersion)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutdown_started")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown_failed err=%v", err)
		}
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.DB, error) {
	if cfg.DBDriver == config.DriverPostgres {
		db, err := store.NewPostgresDB(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	db, err := store.NewSQLiteDB(cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	return db, nil
}
