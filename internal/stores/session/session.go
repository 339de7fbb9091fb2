package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"gorm.io/gorm"
)

// Session is a stored conversation usable as agent memory
type Session interface {
	memory.Session

	// ID returns the session's identifier
	ID() uuid.UUID

	// Channel names the front-end that opened the session (cli, api)
	Channel() string
}

// Conversation is the stored row of a session
type Conversation struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Channel   string    `json:"channel" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// gormSession is a conversation persisted through GORM
type gormSession struct {
	conversation Conversation
	db           *gorm.DB
}

func (s *gormSession) ID() uuid.UUID {
	return s.conversation.ID
}

func (s *gormSession) Channel() string {
	return s.conversation.Channel
}

// SessionID returns the session ID as a string
func (s *gormSession) SessionID(ctx context.Context) string {
	return s.conversation.ID.String()
}

// GetItems returns the conversation history in chronological order. A positive
// limit keeps only the latest items
func (s *gormSession) GetItems(ctx context.Context, limit int) ([]memory.TResponseInputItem, error) {
	var rows []Item

	query := s.db.WithContext(ctx).Where("session_id = ?", s.conversation.ID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve items: %w", err)
	}

	slices.Reverse(rows)

	items := make([]memory.TResponseInputItem, 0, len(rows))
	for _, row := range rows {
		if row.Data.TResponseInputItem != nil {
			items = append(items, *row.Data.TResponseInputItem)
		}
	}

	return trimOrphanOutputs(items), nil
}

// AddItems appends items, keeping each tool output behind its call
func (s *gormSession) AddItems(ctx context.Context, items []memory.TResponseInputItem) error {
	if len(items) == 0 {
		return nil
	}

	ordered := pairToolCalls(items)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One insert per item so ids follow conversation order
		for i := range ordered {
			row := &Item{
				SessionID: s.conversation.ID,
				Data:      ItemData{TResponseInputItem: &ordered[i]},
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("failed to save item: %w", err)
			}
		}

		return tx.Model(&Conversation{}).Where("id = ?", s.conversation.ID).
			Update("updated_at", time.Now().UTC()).Error
	})
}

// PopItem removes and returns the most recent item, or nil when empty
func (s *gormSession) PopItem(ctx context.Context) (*memory.TResponseInputItem, error) {
	var row Item

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", s.conversation.ID).Order("id DESC").First(&row).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to pop item: %w", err)
	}

	return row.Data.TResponseInputItem, nil
}

// ClearSession removes every item of the session
func (s *gormSession) ClearSession(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", s.conversation.ID).Delete(&Item{}).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// inMemorySession is a conversation that lives as long as the process
type inMemorySession struct {
	id      uuid.UUID
	channel string

	mu    sync.RWMutex
	items []memory.TResponseInputItem
}

func (s *inMemorySession) ID() uuid.UUID {
	return s.id
}

func (s *inMemorySession) Channel() string {
	return s.channel
}

// SessionID returns the session ID as a string
func (s *inMemorySession) SessionID(ctx context.Context) string {
	return s.id.String()
}

// GetItems returns the conversation history in chronological order
func (s *inMemorySession) GetItems(ctx context.Context, limit int) ([]memory.TResponseInputItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}

	return trimOrphanOutputs(slices.Clone(items)), nil
}

// AddItems appends items, keeping each tool output behind its call
func (s *inMemorySession) AddItems(ctx context.Context, items []memory.TResponseInputItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, pairToolCalls(items)...)
	return nil
}

// PopItem removes and returns the most recent item, or nil when empty
func (s *inMemorySession) PopItem(ctx context.Context) (*memory.TResponseInputItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil, nil
	}

	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return &last, nil
}

// ClearSession removes every item of the session
func (s *inMemorySession) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return nil
}
