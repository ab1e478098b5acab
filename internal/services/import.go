package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lehmann314159/vocabcards/internal/models"
)

// DefaultImportDelay spaces out dictionary requests during a bulk import
const DefaultImportDelay = 100 * time.Millisecond

// ImportStatus is the outcome of importing a single word
type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportFailed  ImportStatus = "failed"
	ImportExists  ImportStatus = "exists"
)

// WordLookup resolves a word against a dictionary
type WordLookup interface {
	Lookup(ctx context.Context, word string) (*models.DictionaryResponse, error)
}

// ImportResult is the outcome for one word of a bulk import
type ImportResult struct {
	Word   string       `json:"word"`
	Status ImportStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// ImportSummary contains the results of a bulk import
type ImportSummary struct {
	RunID   string         `json:"run_id"`
	Results []ImportResult `json:"results"`
	Success int            `json:"success"`
	Failed  int            `json:"failed"`
	Exists  int            `json:"exists"`
}

func (s *ImportSummary) add(r ImportResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case ImportSuccess:
		s.Success++
	case ImportFailed:
		s.Failed++
	case ImportExists:
		s.Exists++
	}
}

// ImportService looks words up and stores them as cards
type ImportService struct {
	cards *WordCardService
	dict  WordLookup
	log   *slog.Logger
	delay time.Duration
}

// NewImportService creates an import service using the default request delay
func NewImportService(cards *WordCardService, dict WordLookup, log *slog.Logger) *ImportService {
	return &ImportService{
		cards: cards,
		dict:  dict,
		log:   log,
		delay: DefaultImportDelay,
	}
}

// SetDelay changes the pause between dictionary requests
func (s *ImportService) SetDelay(d time.Duration) {
	s.delay = d
}

// ImportWords imports each word in order. Words already stored are reported
// as existing and left untouched. A cancelled context stops the import and
// returns the results gathered so far along with the context error.
func (s *ImportService) ImportWords(ctx context.Context, words []string) (*ImportSummary, error) {
	summary := &ImportSummary{
		RunID:   uuid.NewString(),
		Results: make([]ImportResult, 0, len(words)),
	}
	log := s.log.With("run_id", summary.RunID)
	start := time.Now()

	for i, word := range words {
		if err := ctx.Err(); err != nil {
			log.WarnContext(ctx, "import cancelled", "done", i, "total", len(words))
			return summary, err
		}

		result, looked := s.importWord(ctx, log, word)
		summary.add(result)

		if looked && s.delay > 0 && i < len(words)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
	}

	log.InfoContext(ctx, "import finished",
		"total", len(words),
		"success", summary.Success,
		"failed", summary.Failed,
		"exists", summary.Exists,
		"duration", time.Since(start),
	)
	return summary, nil
}

// importWord reports whether the dictionary was consulted
func (s *ImportService) importWord(ctx context.Context, log *slog.Logger, word string) (ImportResult, bool) {
	exists, err := s.cards.WordCardExists(ctx, word)
	if err != nil {
		return ImportResult{Word: word, Status: ImportFailed, Error: err.Error()}, false
	}
	if exists {
		return ImportResult{Word: word, Status: ImportExists}, false
	}

	entry, err := s.dict.Lookup(ctx, word)
	if err != nil {
		log.WarnContext(ctx, "dictionary lookup failed", "word", word, "error", err)
		return ImportResult{Word: word, Status: ImportFailed, Error: err.Error()}, true
	}

	card, err := CardFromDictionary(entry)
	if err != nil {
		return ImportResult{Word: word, Status: ImportFailed, Error: err.Error()}, true
	}
	// Store under the word as requested, not as the dictionary spells it
	card.Word = word

	if err := s.cards.SaveWordCard(ctx, card); err != nil {
		return ImportResult{Word: word, Status: ImportFailed, Error: err.Error()}, true
	}
	return ImportResult{Word: word, Status: ImportSuccess}, true
}

// ParseWordList reads one word per line, trimming whitespace, skipping blank
// lines and dropping repeats
func ParseWordList(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return words, nil
}
