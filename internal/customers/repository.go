// Package customers stores customer contact records in a local SQLite file
package customers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPath is the customer database used when none is configured
const DefaultPath = "customer_data.db"

// Repository adds and looks up customers. It holds no connection: every call
// opens the database file, does its work and closes it again
type Repository struct {
	path   string
	logger zerolog.Logger
}

// New prepares the database file at path, creating the table and its unique
// index when missing
func New(ctx context.Context, path string) (*Repository, error) {
	if path == "" {
		path = DefaultPath
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve customer database path: %w", err)
	}

	repo := &Repository{
		path:   abs,
		logger: log.With().Str("component", "customers").Str("path", abs).Logger(),
	}

	err = repo.withDB(ctx, func(db *gorm.DB) error {
		if err := db.Exec(createTable).Error; err != nil {
			return err
		}
		return db.Exec(createUniqueIndex).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "initialize customer database")
	}

	return repo, nil
}

// Path returns the absolute path of the database file
func (r *Repository) Path() string {
	return r.path
}

// withDB opens the database, runs fn and always closes the connection
func (r *Repository) withDB(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, err := gorm.Open(sqlite.Open(r.path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("failed to close customer database")
		}
	}()

	return fn(db.WithContext(ctx))
}

// Add inserts a customer. Adding a (name, email) pair that is already stored
// fails with apperrors.ErrAlreadyExists
func (r *Repository) Add(ctx context.Context, name, email string) error {
	err := r.withDB(ctx, func(db *gorm.DB) error {
		return db.Create(&Customer{Name: name, Email: email}).Error
	})

	switch {
	case err == nil:
		r.logger.Debug().Str("name", name).Msg("customer added")
		return nil
	case isUniqueViolation(err):
		return apperrors.Wrap(apperrors.ErrAlreadyExists, err, "customer %q", name)
	default:
		return apperrors.Wrap(apperrors.ErrStorage, err, "add customer %q", name)
	}
}

// Find returns the earliest stored customer with exactly this name, or nil
// when there is none
func (r *Repository) Find(ctx context.Context, name string) (*Customer, error) {
	var found []Customer

	err := r.withDB(ctx, func(db *gorm.DB) error {
		return db.Where("name = ?", name).Order("id ASC").Limit(1).Find(&found).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "find customer %q", name)
	}

	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// List returns every stored customer ordered by id
func (r *Repository) List(ctx context.Context) ([]Customer, error) {
	var all []Customer

	err := r.withDB(ctx, func(db *gorm.DB) error {
		return db.Order("id ASC").Find(&all).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "list customers")
	}

	return all, nil
}

// isUniqueViolation recognises a unique constraint failure, translated or not
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
