package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lehmann314159/vocabcards/internal/models"
	"github.com/lehmann314159/vocabcards/internal/store"
)

func setupTestRepo(t *testing.T) (*SQLiteRepository, *store.Provider) {
	t.Helper()
	provider := store.New(filepath.Join(t.TempDir(), "word_cards.db"))
	return NewSQLiteRepository(provider), provider
}

func TestSQLiteRepository_UpsertInsert(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name            string
		card            *models.NewWordCard
		wantFamiliarity int
		wantSeenCount   int
	}{
		{
			name: "create card with all fields",
			card: &models.NewWordCard{
				Word:          "ephemeral",
				Pos:           strPtr(`["adjective"]`),
				Definition:    strPtr("[adjective] Lasting a very short time."),
				Pronunciation: strPtr(`{"phonetic":"/əˈfem(ə)rəl/","audio":""}`),
				Verbs:         strPtr("{}"),
				Familiarity:   intPtr(2),
				SeenCount:     intPtr(4),
			},
			wantFamiliarity: 2,
			wantSeenCount:   4,
		},
		{
			name:            "create card with minimal fields uses column defaults",
			card:            &models.NewWordCard{Word: "ubiquitous"},
			wantFamiliarity: 0,
			wantSeenCount:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Upsert(ctx, tt.card); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}

			got, err := repo.GetByWord(ctx, tt.card.Word)
			if err != nil {
				t.Fatalf("GetByWord() error = %v", err)
			}
			if got == nil {
				t.Fatal("GetByWord() returned nil after Upsert()")
			}
			if got.ID == nil || *got.ID == 0 {
				t.Error("Upsert() stored card without ID")
			}
			if got.CreatedAt == nil || *got.CreatedAt == "" {
				t.Error("Upsert() stored card without created_at")
			}
			if got.Familiarity == nil || *got.Familiarity != tt.wantFamiliarity {
				t.Errorf("familiarity = %v, want %d", got.Familiarity, tt.wantFamiliarity)
			}
			if got.SeenCount == nil || *got.SeenCount != tt.wantSeenCount {
				t.Errorf("seen_count = %v, want %d", got.SeenCount, tt.wantSeenCount)
			}
			if derefStr(got.Pos) != derefStr(tt.card.Pos) ||
				derefStr(got.Definition) != derefStr(tt.card.Definition) ||
				derefStr(got.Pronunciation) != derefStr(tt.card.Pronunciation) ||
				derefStr(got.Verbs) != derefStr(tt.card.Verbs) {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tt.card)
			}
		})
	}
}

func TestSQLiteRepository_UpsertExistingBumpsSeenCountOnly(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	first := &models.NewWordCard{Word: "run", Pos: strPtr("v"), Familiarity: intPtr(0), SeenCount: intPtr(1)}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	before, _ := repo.GetByWord(ctx, "run")

	// The second payload's other fields are discarded on the update path
	second := &models.NewWordCard{Word: "run", Pos: strPtr("n"), Definition: strPtr("changed"), Familiarity: intPtr(3)}
	for i := 0; i < 2; i++ {
		if err := repo.Upsert(ctx, second); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	after, err := repo.GetByWord(ctx, "run")
	if err != nil {
		t.Fatalf("GetByWord() error = %v", err)
	}
	if *after.SeenCount != 3 {
		t.Errorf("seen_count = %d, want 3", *after.SeenCount)
	}
	if *after.ID != *before.ID || *after.CreatedAt != *before.CreatedAt {
		t.Error("Upsert() changed id or created_at of existing card")
	}
	if derefStr(after.Pos) != "v" || after.Definition != nil || *after.Familiarity != 0 {
		t.Errorf("Upsert() modified fields of existing card: %+v", after)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSQLiteRepository_UpsertConcurrentNewWord(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Upsert(ctx, &models.NewWordCard{Word: "race"})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Upsert() error = %v", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	got, _ := repo.GetByWord(ctx, "race")
	if *got.SeenCount != writers {
		t.Errorf("seen_count = %d, want %d", *got.SeenCount, writers)
	}
}

func TestSQLiteRepository_GetByWord(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	repo.Upsert(ctx, &models.NewWordCard{Word: "eloquent"})

	tests := []struct {
		name     string
		wordText string
		wantNil  bool
	}{
		{
			name:     "get existing card by word",
			wordText: "eloquent",
			wantNil:  false,
		},
		{
			name:     "missing word returns nil without error",
			wordText: "nonexistent",
			wantNil:  true,
		},
		{
			name:     "match is case-sensitive",
			wordText: "Eloquent",
			wantNil:  true,
		},
		{
			name:     "input is not trimmed",
			wordText: " eloquent ",
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByWord(ctx, tt.wordText)
			if err != nil {
				t.Fatalf("GetByWord() error = %v", err)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("GetByWord() = %v, wantNil %v", got, tt.wantNil)
			}
			if got != nil && got.Word != tt.wordText {
				t.Errorf("GetByWord() = %v, want %v", got.Word, tt.wordText)
			}
		})
	}
}

func TestSQLiteRepository_GetAll(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	empty, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("GetAll() on empty store = %v, want empty slice", empty)
	}

	for _, w := range []string{"ephemeral", "ubiquitous", "eloquent"} {
		repo.Upsert(ctx, &models.NewWordCard{Word: w})
	}

	got, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("GetAll() returned %d cards, want 3", len(got))
	}
}

func TestSQLiteRepository_UpdateFamiliarity(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	repo.Upsert(ctx, &models.NewWordCard{Word: "serendipity"})
	created, _ := repo.GetByWord(ctx, "serendipity")

	tests := []struct {
		name     string
		id       int64
		wantKind models.ErrorKind
	}{
		{
			name: "update existing card",
			id:   *created.ID,
		},
		{
			name:     "update non-existent card",
			id:       999999,
			wantKind: models.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateFamiliarity(ctx, tt.id, 2)
			if models.KindOf(err) != tt.wantKind {
				t.Errorf("UpdateFamiliarity() error = %v, want kind %q", err, tt.wantKind)
			}
		})
	}

	got, _ := repo.GetByWord(ctx, "serendipity")
	if *got.Familiarity != 2 {
		t.Errorf("familiarity = %d, want 2", *got.Familiarity)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	repo.Upsert(ctx, &models.NewWordCard{Word: "ephemeral"})
	created, _ := repo.GetByWord(ctx, "ephemeral")

	tests := []struct {
		name    string
		id      int64
		wantErr bool
	}{
		{
			name:    "delete existing card",
			id:      *created.ID,
			wantErr: false,
		},
		{
			name:    "delete already deleted card",
			id:      *created.ID,
			wantErr: true,
		},
		{
			name:    "delete non-existent card",
			id:      9999,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Delete(ctx, tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Delete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, models.ErrNotFound) {
				t.Errorf("Delete() error = %v, want not found", err)
			}
		})
	}
}

func TestSQLiteRepository_IncrementSeenCount(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	repo.Upsert(ctx, &models.NewWordCard{Word: "laconic", SeenCount: intPtr(5)})
	created, _ := repo.GetByWord(ctx, "laconic")

	if err := repo.IncrementSeenCount(ctx, *created.ID); err != nil {
		t.Fatalf("IncrementSeenCount() error = %v", err)
	}
	got, _ := repo.GetByWord(ctx, "laconic")
	if *got.SeenCount != 6 {
		t.Errorf("seen_count = %d, want 6", *got.SeenCount)
	}

	err := repo.IncrementSeenCount(ctx, 424242)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("IncrementSeenCount() on missing id error = %v, want not found", err)
	}
}

func TestSQLiteRepository_Count(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	for _, w := range []string{"ephemeral", "ubiquitous", "eloquent", "ephemeral"} {
		repo.Upsert(ctx, &models.NewWordCard{Word: w})
	}

	got, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if got != 3 {
		t.Errorf("Count() = %v, want %v", got, 3)
	}
}

func TestSQLiteRepository_StoreUnavailable(t *testing.T) {
	repo := NewSQLiteRepository(failingConnector{})
	ctx := context.Background()

	if _, err := repo.GetAll(ctx); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("GetAll() error = %v, want store unavailable", err)
	}
	if err := repo.Upsert(ctx, &models.NewWordCard{Word: "x"}); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("Upsert() error = %v, want store unavailable", err)
	}
	if err := repo.Delete(ctx, 1); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("Delete() error = %v, want store unavailable", err)
	}
}

func TestClassify_UniqueViolation(t *testing.T) {
	repo, provider := setupTestRepo(t)
	ctx := context.Background()
	repo.Upsert(ctx, &models.NewWordCard{Word: "apple"})

	db, err := provider.Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// A plain INSERT bypasses the upsert and trips the UNIQUE constraint
	_, err = db.ExecContext(ctx, `INSERT INTO word_cards (word) VALUES ('apple')`)
	got := classify("save word card", "apple", err)
	if models.KindOf(got) != models.KindDuplicateWord {
		t.Errorf("classify() kind = %q, want %q", models.KindOf(got), models.KindDuplicateWord)
	}
	if got.Error() != `word card "apple" already exists` {
		t.Errorf("classify() message = %q", got.Error())
	}
}

type failingConnector struct{}

func (failingConnector) Open(context.Context) (*sql.DB, error) {
	return nil, models.NewStoreUnavailableError("open database", errors.New("disk not mounted"))
}

// Helper function to create string pointer
func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestSQLiteRepository_Exists(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &models.NewWordCard{Word: "Apple"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		word string
		want bool
	}{
		{"Apple", true},
		{"apple", false},
		{"Apple ", false},
		{"banana", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, err := repo.Exists(ctx, tt.word)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}
