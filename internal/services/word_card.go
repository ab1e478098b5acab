package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lehmann314159/vocabcards/internal/models"
	"github.com/lehmann314159/vocabcards/internal/repository"
)

// Command names, as invoked by the UI shell
const (
	CmdSaveWordCard               = "save_word_card"
	CmdGetWordCardByWord          = "get_word_card_by_word"
	CmdGetAllWordCards            = "get_all_word_cards"
	CmdUpdateWordCardFamiliarity  = "update_word_card_familiarity"
	CmdDeleteWordCard             = "delete_word_card"
	CmdIncrementWordCardSeenCount = "increment_word_card_seen_count"
	CmdTestDatabaseConnection     = "test_database_connection"
)

// opWordCardExists names the existence check in logs; it is not exposed as a command
const opWordCardExists = "word_card_exists"

// User-facing validation messages
const (
	MsgCardRequired       = "word card payload is required"
	MsgWordRequired       = "word must not be empty"
	MsgInvalidID          = "card id must be a positive integer"
	MsgInvalidFamiliarity = "familiarity level must be between 0 and 3"
)

// WordCardService validates command input, delegates to the repository
// and logs every call
type WordCardService struct {
	repo     repository.WordCardRepository
	log      *slog.Logger
	validate *validator.Validate
}

// NewWordCardService creates a new word card service
func NewWordCardService(repo repository.WordCardRepository, log *slog.Logger) *WordCardService {
	return &WordCardService{
		repo:     repo,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SaveWordCard stores a new card, or counts another sighting of a stored word
func (s *WordCardService) SaveWordCard(ctx context.Context, card *models.NewWordCard) error {
	start := time.Now()
	if card == nil {
		return s.finish(ctx, CmdSaveWordCard, "", start,
			models.NewValidationError(CmdSaveWordCard, "", MsgCardRequired))
	}
	if err := s.checkWord(CmdSaveWordCard, card.Word); err != nil {
		return s.finish(ctx, CmdSaveWordCard, card.Word, start, err)
	}
	if err := s.validate.Struct(card); err != nil {
		return s.finish(ctx, CmdSaveWordCard, card.Word, start,
			models.NewValidationError(CmdSaveWordCard, card.Word, MsgInvalidFamiliarity))
	}

	return s.finish(ctx, CmdSaveWordCard, card.Word, start, s.repo.Upsert(ctx, card))
}

// GetWordCardByWord returns the card for word, or nil when none is stored
func (s *WordCardService) GetWordCardByWord(ctx context.Context, word string) (*models.WordCard, error) {
	start := time.Now()
	if err := s.checkWord(CmdGetWordCardByWord, word); err != nil {
		return nil, s.finish(ctx, CmdGetWordCardByWord, word, start, err)
	}

	card, err := s.repo.GetByWord(ctx, word)
	if err := s.finish(ctx, CmdGetWordCardByWord, word, start, err, "found", card != nil); err != nil {
		return nil, err
	}
	return card, nil
}

// WordCardExists reports whether a card for word is stored
func (s *WordCardService) WordCardExists(ctx context.Context, word string) (bool, error) {
	start := time.Now()
	if err := s.checkWord(opWordCardExists, word); err != nil {
		return false, s.finish(ctx, opWordCardExists, word, start, err)
	}

	exists, err := s.repo.Exists(ctx, word)
	if err := s.finish(ctx, opWordCardExists, word, start, err, "exists", exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetAllWordCards returns every stored card
func (s *WordCardService) GetAllWordCards(ctx context.Context) ([]*models.WordCard, error) {
	start := time.Now()
	cards, err := s.repo.GetAll(ctx)
	if err := s.finish(ctx, CmdGetAllWordCards, "", start, err, "count", len(cards)); err != nil {
		return nil, err
	}
	return cards, nil
}

// UpdateWordCardFamiliarity sets the familiarity level of card id
func (s *WordCardService) UpdateWordCardFamiliarity(ctx context.Context, id int64, level int) error {
	start := time.Now()
	key := strconv.FormatInt(id, 10)
	if err := s.checkID(CmdUpdateWordCardFamiliarity, id); err != nil {
		return s.finish(ctx, CmdUpdateWordCardFamiliarity, key, start, err)
	}
	if err := s.validate.Var(level, "min=0,max=3"); err != nil {
		return s.finish(ctx, CmdUpdateWordCardFamiliarity, key, start,
			models.NewValidationError(CmdUpdateWordCardFamiliarity, key, MsgInvalidFamiliarity))
	}

	err := s.repo.UpdateFamiliarity(ctx, id, level)
	return s.finish(ctx, CmdUpdateWordCardFamiliarity, key, start, err, "level", level)
}

// DeleteWordCard removes card id
func (s *WordCardService) DeleteWordCard(ctx context.Context, id int64) error {
	start := time.Now()
	key := strconv.FormatInt(id, 10)
	if err := s.checkID(CmdDeleteWordCard, id); err != nil {
		return s.finish(ctx, CmdDeleteWordCard, key, start, err)
	}

	return s.finish(ctx, CmdDeleteWordCard, key, start, s.repo.Delete(ctx, id))
}

// IncrementWordCardSeenCount records one more sighting of card id
func (s *WordCardService) IncrementWordCardSeenCount(ctx context.Context, id int64) error {
	start := time.Now()
	key := strconv.FormatInt(id, 10)
	if err := s.checkID(CmdIncrementWordCardSeenCount, id); err != nil {
		return s.finish(ctx, CmdIncrementWordCardSeenCount, key, start, err)
	}

	return s.finish(ctx, CmdIncrementWordCardSeenCount, key, start, s.repo.IncrementSeenCount(ctx, id))
}

// TestDatabaseConnection opens the store and reports how many cards it holds
func (s *WordCardService) TestDatabaseConnection(ctx context.Context) (string, error) {
	start := time.Now()
	count, err := s.repo.Count(ctx)
	if err := s.finish(ctx, CmdTestDatabaseConnection, "", start, err, "count", count); err != nil {
		return "", err
	}
	return fmt.Sprintf("database connection test succeeded: %d word cards stored", count), nil
}

// ExportCSV writes all cards to w as CSV
func (s *WordCardService) ExportCSV(ctx context.Context, w io.Writer) error {
	cards, err := s.GetAllWordCards(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	header := []string{"id", "word", "pos", "definition", "pronunciation", "verbs", "familiarity", "seen_count", "created_at"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, card := range cards {
		record := []string{
			formatInt64(card.ID),
			card.Word,
			deref(card.Pos),
			deref(card.Definition),
			deref(card.Pronunciation),
			deref(card.Verbs),
			formatInt(card.Familiarity),
			formatInt(card.SeenCount),
			deref(card.CreatedAt),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *WordCardService) checkWord(op, word string) error {
	if err := s.validate.Var(strings.TrimSpace(word), "required"); err != nil {
		return models.NewValidationError(op, word, MsgWordRequired)
	}
	return nil
}

func (s *WordCardService) checkID(op string, id int64) error {
	if err := s.validate.Var(id, "gt=0"); err != nil {
		return models.NewValidationError(op, strconv.FormatInt(id, 10), MsgInvalidID)
	}
	return nil
}

// finish logs the outcome of a command and returns err, classified
func (s *WordCardService) finish(ctx context.Context, op, key string, start time.Time, err error, attrs ...any) error {
	attrs = append(attrs, "command", op, "duration", time.Since(start))
	if key != "" {
		attrs = append(attrs, "key", key)
	}

	if err == nil {
		s.log.InfoContext(ctx, "command completed", attrs...)
		return nil
	}

	var classified *models.Error
	if !errors.As(err, &classified) {
		err = models.NewQueryError(op, key, err)
	}

	kind := models.KindOf(err)
	attrs = append(attrs, "kind", string(kind), "error", err.Error())
	switch kind {
	case models.KindValidation, models.KindNotFound:
		s.log.WarnContext(ctx, "command rejected", attrs...)
	default:
		s.log.ErrorContext(ctx, "command failed", attrs...)
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatInt64(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
