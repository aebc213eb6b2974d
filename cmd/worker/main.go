package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/CHGL17/AsistenciasREST/internal/attendance"
	"github.com/CHGL17/AsistenciasREST/internal/catalog"
	"github.com/CHGL17/AsistenciasREST/internal/config"
	"github.com/CHGL17/AsistenciasREST/internal/queue"
	"github.com/CHGL17/AsistenciasREST/internal/store"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

// Worker consumes record-change messages and keeps the enriched-view cache
// warm: each change drops the stale entry and re-projects the record.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	cache := attendance.NewRedisViewCache(redisClient.Client, cfg.ViewCacheTTL)
	att := attendance.NewService(
		attendance.NewRepository(db.Client),
		catalog.NewRepository(db.Client),
		users.NewRepository(db.Client),
	).WithCache(cache)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != attendance.EventTypeChanged {
			continue
		}

		log.Printf("refreshing view %s", msg.ID)
		cache.Del(ctx, msg.ID)
		if _, err := att.Get(ctx, msg.ID); err != nil {
			log.Printf("refresh %s failed: %v", msg.ID, err)
		}
	}

	log.Println("worker stopped")
}
