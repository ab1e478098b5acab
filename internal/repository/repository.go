package repository

import (
	"context"
	"database/sql"

	"github.com/lehmann314159/vocabcards/internal/models"
)

// Connector hands out a fresh, schema-ready connection per call
type Connector interface {
	Open(ctx context.Context) (*sql.DB, error)
}

// WordCardRepository defines the persistence contract for word cards
type WordCardRepository interface {
	// Upsert inserts card, or bumps seen_count by one when the word is
	// already stored. Other fields of an existing card are left untouched.
	Upsert(ctx context.Context, card *models.NewWordCard) error

	// GetByWord returns the card with exactly this word, or nil if none
	GetByWord(ctx context.Context, word string) (*models.WordCard, error)

	// Exists reports whether a card with exactly this word is stored
	Exists(ctx context.Context, word string) (bool, error)

	// GetAll returns every stored card
	GetAll(ctx context.Context) ([]*models.WordCard, error)

	// UpdateFamiliarity sets the familiarity level of a card
	UpdateFamiliarity(ctx context.Context, id int64, level int) error

	// Delete removes a card by ID
	Delete(ctx context.Context, id int64) error

	// IncrementSeenCount adds one to a card's seen_count
	IncrementSeenCount(ctx context.Context, id int64) error

	// Count returns the number of stored cards
	Count(ctx context.Context) (int64, error)
}
