package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "livepoll/docs"
	"livepoll/internal/cache"
	"livepoll/internal/config"
	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/vote"
	"livepoll/internal/event"
	api "livepoll/internal/http"
	"livepoll/internal/metrics"
	"livepoll/internal/platform/database"
	"livepoll/internal/pubsub"
	"livepoll/internal/repository/postgres"
	"livepoll/internal/worker"
)

// @title           Live Poll API
// @version         1.0
// @description     Live poll voting with real-time result updates
// @BasePath        /
func main() {
	cfg := config.Load()

	metrics.Register()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoCreateTables {
		if err := database.CreateSchema(ctx, db); err != nil {
			log.Fatalf("schema create error: %v", err)
		}
	}

	resultsCache, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connect error: %v", err)
	}
	defer resultsCache.Close()

	pollRepo := postgres.NewPollRepo(db)
	voteRepo := postgres.NewVoteRepo(db)

	hub := pubsub.NewHub()

	pollSvc := poll.NewService(pollRepo)
	voteSvc := vote.NewService(pollRepo, voteRepo, resultsCache, hub)

	var publisher event.VotePublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
	}

	voteCh := make(chan event.VoteEvent, 100)
	statsWorker := worker.NewStatsWorker(voteCh, publisher)

	router := api.NewRouter(pollSvc, voteSvc, hub, voteCh, db, resultsCache)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go statsWorker.Run(ctx)

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}
