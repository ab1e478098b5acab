package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lehmann314159/vocabcards/internal/models"
)

// Schema creates the word_cards table if it is missing. It is applied on
// every connection.
//
//go:embed migrations/000001_create_word_cards.up.sql
var Schema string

const busyTimeoutMillis = 5000

// Provider opens connections to the SQLite file at a fixed path
type Provider struct {
	path string
}

// New creates a provider for the database file at path
func New(path string) *Provider {
	return &Provider{path: path}
}

// Path returns the database file location
func (p *Provider) Path() string {
	return p.path
}

// Open creates the parent directory if needed, opens a new connection and
// applies Schema. Every failure is reported as a StoreUnavailable error.
// The caller owns the returned handle and must close it.
func (p *Provider) Open(ctx context.Context) (*sql.DB, error) {
	db, err := open(p.path)
	if err != nil {
		return nil, models.NewStoreUnavailableError("open database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, models.NewStoreUnavailableError("open database",
			fmt.Errorf("failed to connect to %s: %w", p.path, err))
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, models.NewStoreUnavailableError("open database",
			fmt.Errorf("failed to apply schema: %w", err))
	}

	return db, nil
}

func open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

// dsn appends driver options; go-sqlite3 strips them from plain paths
// before opening the file.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", path, sep, busyTimeoutMillis)
}
