package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase opens and pings the Postgres connection
func InitDatabase(dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS raw_deals (
			id SERIAL PRIMARY KEY,
			dispensary_name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			raw_text TEXT NOT NULL DEFAULT '',
			product_name TEXT NOT NULL,
			price TEXT NOT NULL DEFAULT '',
			weight TEXT NOT NULL DEFAULT '',
			thc TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			detected_at TEXT NOT NULL DEFAULT '',
			source VARCHAR(20) NOT NULL DEFAULT 'manual',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_raw_deals_dispensary ON raw_deals (dispensary_name)`,
		`CREATE INDEX IF NOT EXISTS idx_raw_deals_created ON raw_deals (created_at)`,
	}

	for _, query := range queries {
		if _, err := DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
