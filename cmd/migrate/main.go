// Package main applies the schools/events schema to a PostgreSQL database.
// It is only needed when the store talks to Postgres directly or when the
// tables are provisioned outside the Supabase dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fillout-webhook/internal/services/database"
)

func main() {
	fmt.Println("=== Database Migration ===")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	versions, err := database.Migrate(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	if len(versions) == 0 {
		fmt.Println("Schema is up to date")
		return
	}
	for _, v := range versions {
		fmt.Printf("Applied migration %05d\n", v)
	}
}
