package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baydelivery/internal/backup"
	"baydelivery/internal/httpapi"
	"baydelivery/pkg/config"
	"baydelivery/pkg/db"
	"baydelivery/pkg/drive"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	var vault backup.Vault
	if cfg.Drive.FolderID != "" && cfg.Drive.ServiceAccountKeyB64 != "" {
		client, err := drive.New(cfg.Drive.FolderID, cfg.Drive.ServiceAccountKeyB64, cfg.Drive.BackupKeep)
		if err != nil {
			log.Fatalf("drive vault: %v", err)
		}
		vault = client
		log.Printf("drive vault configured, folder %s", cfg.Drive.FolderID)
	} else {
		log.Printf("drive vault not configured, snapshots stay local")
	}

	if cfg.AdminToken == "" {
		log.Printf("warning: ADMIN_API_TOKEN is empty, admin endpoints will refuse all callers")
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:   cfg,
		DB:    conn,
		Vault: vault,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
