package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values of SESSION_DB_DRIVER
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// DefaultPath is the SQLite file used when SESSION_DB_PATH is unset
const DefaultPath = "sessions.db"

// ErrNotFound is returned when a session id is unknown
var ErrNotFound = errors.New("session not found")

// Store interface defines methods for session storage
type Store interface {
	CreateSession(ctx context.Context, channel string) (Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Open creates the store selected by SESSION_DB_DRIVER
func Open(cfg *utils.Config) (Store, error) {
	driver := strings.ToLower(cfg.GetWithDefault("SESSION_DB_DRIVER", DriverSQLite))

	switch driver {
	case DriverMemory:
		return NewInMemoryStore(), nil
	case DriverSQLite:
		return NewGormStore(sqlite.Open(cfg.GetWithDefault("SESSION_DB_PATH", DefaultPath)))
	case DriverMySQL:
		dsn, err := MySQLDSN(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormStore(mysql.Open(dsn))
	default:
		return nil, apperrors.New(apperrors.ErrValidation, "unknown session driver %q", driver)
	}
}

// MySQLDSN builds a MySQL DSN from the MYSQL_* configuration keys
func MySQLDSN(cfg *utils.Config) (string, error) {
	database := cfg.Get("MYSQL_DATABASE")
	if database == "" {
		return "", apperrors.New(apperrors.ErrValidation, "MYSQL_DATABASE is required for the mysql session store")
	}

	mc := gomysql.NewConfig()
	mc.User = cfg.GetWithDefault("MYSQL_USER", "root")
	mc.Passwd = cfg.GetWithDefault("MYSQL_PASSWORD", "")
	mc.Net = "tcp"
	mc.Addr = cfg.GetWithDefault("MYSQL_HOST", "127.0.0.1:3306")
	mc.DBName = database
	mc.ParseTime = true
	mc.Loc = time.UTC

	return mc.FormatDSN(), nil
}

// GormStore handles session persistence using GORM
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the dialector and migrates the session tables
func NewGormStore(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "failed to open session database")
	}

	if err := db.AutoMigrate(&Conversation{}, &Item{}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "failed to migrate session tables")
	}

	return &GormStore{db: db}, nil
}

// CreateSession creates a new session in the database
func (s *GormStore) CreateSession(ctx context.Context, channel string) (Session, error) {
	conversation := Conversation{
		ID:      uuid.New(),
		Channel: channel,
	}

	if err := s.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "failed to create session")
	}

	return &gormSession{conversation: conversation, db: s.db}, nil
}

// GetSession retrieves a session by ID
func (s *GormStore) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	var conversation Conversation

	err := s.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err, "failed to get session")
	}

	return &gormSession{conversation: conversation, db: s.db}, nil
}

// DeleteSession removes a session and its items
func (s *GormStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&Item{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err, "failed to delete session items")
		}

		result := tx.Where("id = ?", id).Delete(&Conversation{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrStorage, result.Error, "failed to delete session")
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// Close releases the database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*inMemorySession
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[uuid.UUID]*inMemorySession),
	}
}

// CreateSession creates a new session in memory
func (s *InMemoryStore) CreateSession(ctx context.Context, channel string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &inMemorySession{id: uuid.New(), channel: channel}
	s.sessions[session.id] = session

	return session, nil
}

// GetSession retrieves a session by ID
func (s *InMemoryStore) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// DeleteSession removes a session
func (s *InMemoryStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Close is a no-op for the in-memory store
func (s *InMemoryStore) Close() error {
	return nil
}

// Interface compliance
var (
	_ Store   = (*GormStore)(nil)
	_ Store   = (*InMemoryStore)(nil)
	_ Session = (*gormSession)(nil)
	_ Session = (*inMemorySession)(nil)
)
