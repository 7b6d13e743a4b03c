// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"testing"

	"tabletrack/internal/database"
	"tabletrack/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory SQLite database. The pool is pinned to a
// single connection so every query sees the same memory database; code
// running inside a transaction must only use the transaction handle.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), database.Config("silent"))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewDB opens a fresh database for t and closes it on cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTable(t testing.TB, db *gorm.DB, number int, status models.TableStatus) *models.Table {
	t.Helper()
	table := &models.Table{Number: number, Status: status}
	require.NoError(t, db.Create(table).Error)
	return table
}

func CreateProduct(t testing.TB, db *gorm.DB, name, price string, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Category: "drinks",
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
