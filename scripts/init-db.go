package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"tabletrack/internal/config"
	"tabletrack/internal/database"
	"tabletrack/internal/migrations"
)

func main() {
	reset := flag.Bool("reset", false, "drop all tables before migrating")
	menu := flag.Bool("menu", true, "seed the starter menu")
	flag.Parse()

	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = migrations.RunMigrations(context.Background(), db, migrations.Options{
		Reset:         *reset,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SeedTables:    cfg.SeedTables,
		SeedMenu:      *menu,
	})
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("Database initialization completed successfully!")
	fmt.Printf("Admin login: %s\n", cfg.AdminEmail)
}
