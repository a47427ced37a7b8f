package main

import (
	"flag"
	"log"
	"time"

	"party-deduction/internal/config"
	"party-deduction/internal/db"
)

func main() {
	filePath := flag.String("file", "data/word_pairs.csv", "path to word pairs csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseURL, db.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	loaded, err := db.LoadWordPairs(conn, *filePath)
	if err != nil {
		log.Fatalf("failed to load word pairs after %d rows: %v", loaded, err)
	}
	log.Printf("loaded %d word pairs", loaded)
}
