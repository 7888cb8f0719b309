package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-docs-assistant-be/internal/bootstrap"
	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/internal/server"
	"ai-docs-assistant-be/internal/tracer"
	"ai-docs-assistant-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Telemetry)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database (optional; the file backends need none)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// Usage counters survive restarts when postgres is configured
	if err := container.UsageTracker.Restore(context.Background()); err != nil {
		log.Printf("Failed to restore usage counters: %v", err)
	}

	// 5. Start Background Services
	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if container.WatcherService != nil {
		log.Println("Background: Starting Watcher Service...")
		if err := container.WatcherService.Start(context.Background()); err != nil {
			log.Printf("Background Watcher Error: %v", err)
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server, stop on SIGINT/SIGTERM
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if container.WatcherService != nil {
		if err := container.WatcherService.Stop(); err != nil {
			log.Printf("Watcher stop error: %v", err)
		}
	}

	if err := container.UsageTracker.Flush(shutdownCtx); err != nil {
		log.Printf("Failed to flush usage counters: %v", err)
	}

	if err := container.CacheStore.Close(); err != nil {
		log.Printf("Cache close error: %v", err)
	}

	if container.NatsPublisher != nil {
		container.NatsPublisher.Close()
	}

	log.Println("Shutdown complete")
}
