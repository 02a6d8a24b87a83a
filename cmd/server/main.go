package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codyseavey/cardvault/internal/api"
	"github.com/codyseavey/cardvault/internal/config"
	"github.com/codyseavey/cardvault/internal/database"
	"github.com/codyseavey/cardvault/internal/metrics"
	"github.com/codyseavey/cardvault/internal/models"
	"github.com/codyseavey/cardvault/internal/services"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	mediaStorage := services.NewMediaStorageService(cfg.MediaDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep the live-card gauge fresh for dashboards.
	go updateCatalogMetrics(ctx, db, cfg.Tenant)

	router := api.SetupRouter(cfg, db, mediaStorage)

	addr := cfg.BindHost + ":" + strconv.Itoa(cfg.BindPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func updateCatalogMetrics(ctx context.Context, db *gorm.DB, tenant string) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		var count int64
		if err := db.Model(&models.Card{}).
			Where("tenant_id = ? AND deleted_at IS NULL", tenant).
			Count(&count).Error; err == nil {
			metrics.CardsLive.Set(float64(count))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
