package main

import (
	"context"
	"flag"

	"telemarketing/internal/config"
	"telemarketing/internal/db"
	"telemarketing/internal/dictionary"
	"telemarketing/internal/logger"
	"telemarketing/internal/repository"
)

func main() {
	url := flag.String("url", "", "data dictionary page to import")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *url == "" {
		log.Fatal("missing -url")
	}

	ctx := context.Background()

	book, err := dictionary.Import(ctx, *url)
	if err != nil {
		log.Fatal("dictionary import failed", "url", *url, "error", err)
	}
	if len(book) == 0 {
		log.Warn("no feature descriptions found", "url", *url)
		return
	}

	sqlDB, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres unavailable", "error", err)
	}
	defer sqlDB.Close()

	repo := &repository.PlaybookRepository{DB: sqlDB}
	n, err := repo.Save(ctx, book)
	if err != nil {
		log.Fatal("playbook save failed", "saved", n, "error", err)
	}
	log.Info("playbook imported", "url", *url, "features", n)
}
