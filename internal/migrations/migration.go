package migrations

import (
	"context"
	"fmt"
	"log"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/database"
	"tabletrack/internal/models"
	"tabletrack/internal/repository"
	"tabletrack/internal/services"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Options controls what RunMigrations does besides bringing the schema up
// to date.
type Options struct {
	Reset         bool // drop every table first
	AdminEmail    string
	AdminPassword string
	SeedTables    int
	SeedMenu      bool
}

// RunMigrations runs all database migrations and creates default data
func RunMigrations(ctx context.Context, db *gorm.DB, opts Options) error {
	log.Println("Running database migrations...")

	if opts.Reset {
		log.Println("Dropping existing tables...")
		err := db.Migrator().DropTable(
			&models.OrderItem{},
			&models.Order{},
			&models.Product{},
			&models.Table{},
			&models.User{},
		)
		if err != nil {
			log.Printf("Warning: Error dropping tables: %v", err)
		}
	}

	log.Println("Creating tables...")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := createDefaultData(ctx, db, opts); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds an admin, the first tables and a starter menu.
// Existing data is left alone, so running it twice is harmless.
func createDefaultData(ctx context.Context, db *gorm.DB, opts Options) error {
	log.Println("Creating default data...")
	store := repository.NewStore(db)

	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := seedAdmin(ctx, store, opts.AdminEmail, opts.AdminPassword); err != nil {
			return err
		}
	}
	if err := seedTables(ctx, store, opts.SeedTables); err != nil {
		return err
	}
	if opts.SeedMenu {
		if err := seedMenu(ctx, store); err != nil {
			return err
		}
	}

	log.Println("Default data created successfully!")
	return nil
}

func seedAdmin(ctx context.Context, store repository.Store, email, password string) error {
	users := services.NewUserService(store.Users())

	_, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		log.Println("Admin user already exists")
		return nil
	}
	if !apperrors.Is(err, apperrors.NotFound) {
		return err
	}

	admin := &models.User{Name: "Administrator", Email: email, Role: models.RoleAdmin}
	if err := users.CreateUser(ctx, admin, password); err != nil {
		return err
	}
	log.Printf("Admin user created: %s", admin.Email)
	return nil
}

func seedTables(ctx context.Context, store repository.Store, count int) error {
	max, err := store.Tables().MaxNumber(ctx)
	if err != nil {
		return err
	}
	if max > 0 || count <= 0 {
		return nil
	}

	tables := services.NewTableService(store, nil, 3)
	for i := 0; i < count; i++ {
		if _, err := tables.CreateNextTable(ctx); err != nil {
			return err
		}
	}
	log.Printf("Created %d tables", count)
	return nil
}

var starterMenu = []services.CreateProductRequest{
	{Name: "Espresso", Category: "coffee", Price: decimal.RequireFromString("2.50")},
	{Name: "Cappuccino", Category: "coffee", Price: decimal.RequireFromString("3.50")},
	{Name: "Orange Juice", Category: "drinks", Price: decimal.RequireFromString("4.00")},
	{Name: "Croissant", Category: "bakery", Price: decimal.RequireFromString("2.80")},
	{Name: "Club Sandwich", Category: "kitchen", Price: decimal.RequireFromString("9.90")},
}

func seedMenu(ctx context.Context, store repository.Store) error {
	products := services.NewProductService(store.Products())
	for _, item := range starterMenu {
		_, err := products.CreateProduct(ctx, item)
		if err != nil && !apperrors.Is(err, apperrors.Conflict) {
			return fmt.Errorf("failed to seed %s: %w", item.Name, err)
		}
	}
	return nil
}
