package main

import (
	"context"
	"flag"
	"log"
	"time"

	"livepoll/internal/config"
	"livepoll/internal/domain/poll"
	"livepoll/internal/platform/database"
	"livepoll/internal/repository/postgres"
)

func main() {
	title := flag.String("title", "Lunch menu", "poll title")
	description := flag.String("description", "What should we order?", "poll description")
	flag.Parse()

	options := flag.Args()
	if len(options) == 0 {
		options = []string{"Pizza", "Sushi"}
	}

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DB_DSN)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.AutoCreateTables {
		if err := database.CreateSchema(ctx, db); err != nil {
			log.Fatalf("schema create error: %v", err)
		}
	}

	p := &poll.Poll{
		Title:       *title,
		Description: description,
		IsActive:    true,
	}
	opts := make([]poll.Option, 0, len(options))
	for i, label := range options {
		opts = append(opts, poll.Option{Label: label, SortOrder: i + 1})
	}

	svc := poll.NewService(postgres.NewPollRepo(db))
	id, err := svc.Create(ctx, p, opts)
	if err != nil {
		log.Fatalf("seed error: %v", err)
	}

	log.Printf("seeded poll %d with %d options", id, len(opts))
}
