package postgres

import (
	"fmt"

	"github.com/ecom-auth-api/internal/config"
	"github.com/ecom-auth-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database and migrates the accounts schema.
// TranslateError is required so duplicate-key violations surface as
// gorm.ErrDuplicatedKey instead of a driver-specific error.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&domain.Account{}); err != nil {
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}
	return db, nil
}
