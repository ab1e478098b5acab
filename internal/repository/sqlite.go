package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/lehmann314159/vocabcards/internal/models"
)

const selectColumns = `SELECT id, word, pos, definition, pronunciation, verbs, familiarity, seen_count, created_at
		 FROM word_cards`

// SQLiteRepository implements WordCardRepository using SQLite.
// Every method opens its own connection and closes it before returning.
type SQLiteRepository struct {
	conn Connector
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(conn Connector) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

// Upsert inserts a new card or bumps seen_count of the existing one.
// The conflict is resolved by the UNIQUE constraint on word inside a
// single statement, so concurrent saves of a new word leave one row.
func (r *SQLiteRepository) Upsert(ctx context.Context, card *models.NewWordCard) error {
	const op = "save word card"

	db, err := r.conn.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx,
		`INSERT INTO word_cards (word, pos, definition, pronunciation, verbs, familiarity, seen_count)
		 VALUES (?, ?, ?, ?, ?, COALESCE(?, 0), COALESCE(?, 1))
		 ON CONFLICT(word) DO UPDATE SET seen_count = word_cards.seen_count + 1`,
		card.Word, card.Pos, card.Definition, card.Pronunciation, card.Verbs, card.Familiarity, card.SeenCount,
	)
	if err != nil {
		return classify(op, card.Word, err)
	}
	return nil
}

// GetByWord retrieves a card by exact word match
func (r *SQLiteRepository) GetByWord(ctx context.Context, word string) (*models.WordCard, error) {
	const op = "get word card"

	db, err := r.conn.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	card, err := scanWordCard(db.QueryRowContext(ctx, selectColumns+` WHERE word = ?`, word))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, word, err)
	}
	return card, nil
}

// Exists reports whether word is stored, without reading the card
func (r *SQLiteRepository) Exists(ctx context.Context, word string) (bool, error) {
	db, err := r.conn.Open(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM word_cards WHERE word = ?)`, word).Scan(&exists)
	if err != nil {
		return false, classify("check word card", word, err)
	}
	return exists, nil
}

// GetAll retrieves every card; the result is empty, not nil, for an empty store
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.WordCard, error) {
	const op = "list word cards"

	db, err := r.conn.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, classify(op, "", err)
	}
	defer rows.Close()

	cards := []*models.WordCard{}
	for rows.Next() {
		card, err := scanWordCard(rows)
		if err != nil {
			return nil, classify(op, "", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(op, "", fmt.Errorf("error iterating rows: %w", err))
	}

	return cards, nil
}

// UpdateFamiliarity sets familiarity to an absolute level
func (r *SQLiteRepository) UpdateFamiliarity(ctx context.Context, id int64, level int) error {
	return r.execByID(ctx, "update familiarity", id,
		`UPDATE word_cards SET familiarity = ? WHERE id = ?`, level, id)
}

// Delete removes a card by ID
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return r.execByID(ctx, "delete word card", id,
		`DELETE FROM word_cards WHERE id = ?`, id)
}

// IncrementSeenCount adds one to seen_count in a single statement
func (r *SQLiteRepository) IncrementSeenCount(ctx context.Context, id int64) error {
	return r.execByID(ctx, "increment seen count", id,
		`UPDATE word_cards SET seen_count = seen_count + 1 WHERE id = ?`, id)
}

// Count returns the total number of cards
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.conn.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM word_cards`).Scan(&count); err != nil {
		return 0, classify("count word cards", "", err)
	}
	return count, nil
}

// execByID runs a single id-keyed statement. Zero affected rows means the
// id does not exist.
func (r *SQLiteRepository) execByID(ctx context.Context, op string, id int64, query string, args ...any) error {
	db, err := r.conn.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(op, fmt.Sprint(id), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(op, fmt.Sprint(id), fmt.Errorf("failed to get rows affected: %w", err))
	}

	if rowsAffected == 0 {
		return models.NewNotFoundError(op, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanWordCard scans one row of selectColumns into a WordCard
func scanWordCard(row scanner) (*models.WordCard, error) {
	var card models.WordCard
	var id, familiarity, seenCount sql.NullInt64
	var pos, definition, pronunciation, verbs, createdAt sql.NullString

	err := row.Scan(
		&id, &card.Word, &pos, &definition, &pronunciation, &verbs,
		&familiarity, &seenCount, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan word card: %w", err)
	}

	if id.Valid {
		card.ID = &id.Int64
	}
	card.Pos = nullString(pos)
	card.Definition = nullString(definition)
	card.Pronunciation = nullString(pronunciation)
	card.Verbs = nullString(verbs)
	card.Familiarity = nullInt(familiarity)
	card.SeenCount = nullInt(seenCount)
	card.CreatedAt = nullString(createdAt)

	return &card, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// classify maps a store error onto the error kinds. Errors that are already
// classified, such as a failed connection, pass through unchanged.
func classify(op, key string, err error) error {
	var classified *models.Error
	if errors.As(err, &classified) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return models.NewDuplicateWordError(op, key, err)
	}

	return models.NewQueryError(op, key, err)
}
