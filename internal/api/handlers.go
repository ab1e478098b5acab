package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/vocabcards/internal/models"
	"github.com/lehmann314159/vocabcards/internal/services"
)

// maxBodyBytes bounds request bodies, including word lists for import
const maxBodyBytes = 10 << 20

// Handler contains all HTTP handlers
type Handler struct {
	cards    *services.WordCardService
	importer *services.ImportService
	log      *slog.Logger
	version  string
}

// NewHandler creates a new handler
func NewHandler(cards *services.WordCardService, importer *services.ImportService, log *slog.Logger, version string) *Handler {
	return &Handler{
		cards:    cards,
		importer: importer,
		log:      log,
		version:  version,
	}
}

// DataResponse wraps a successful result
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeData writes a successful result in the data envelope
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, DataResponse{Data: data})
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Kind: kind, Message: message}})
}

// writeCommandError writes err with the status its kind maps to
func writeCommandError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)
	writeError(w, statusFor(kind), string(kind), err.Error())
}

// statusFor maps an error kind to an HTTP status
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindDuplicateWord:
		return http.StatusConflict
	case models.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// invokeArgs are the named arguments the UI shell sends with a command
type invokeArgs struct {
	Card             *models.NewWordCard `json:"card"`
	WordQuery        *string             `json:"wordQuery"`
	CardID           *int64              `json:"cardId"`
	FamiliarityLevel *int                `json:"familiarityLevel"`
}

func missingArg(command, name string) error {
	return models.NewValidationError(command, "", fmt.Sprintf("missing argument %q", name))
}

// Invoke handles POST /invoke/{command}
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	var args invokeArgs
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, string(models.KindValidation), "invalid request body")
		return
	}

	data, err := h.dispatch(r, command, args)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (h *Handler) dispatch(r *http.Request, command string, args invokeArgs) (any, error) {
	ctx := r.Context()

	switch command {
	case services.CmdSaveWordCard:
		return nil, h.cards.SaveWordCard(ctx, args.Card)

	case services.CmdGetWordCardByWord:
		if args.WordQuery == nil {
			return nil, missingArg(command, "wordQuery")
		}
		card, err := h.cards.GetWordCardByWord(ctx, *args.WordQuery)
		if err != nil || card == nil {
			return nil, err
		}
		return card, nil

	case services.CmdGetAllWordCards:
		return h.cards.GetAllWordCards(ctx)

	case services.CmdUpdateWordCardFamiliarity:
		if args.CardID == nil {
			return nil, missingArg(command, "cardId")
		}
		if args.FamiliarityLevel == nil {
			return nil, missingArg(command, "familiarityLevel")
		}
		return nil, h.cards.UpdateWordCardFamiliarity(ctx, *args.CardID, *args.FamiliarityLevel)

	case services.CmdDeleteWordCard:
		if args.CardID == nil {
			return nil, missingArg(command, "cardId")
		}
		return nil, h.cards.DeleteWordCard(ctx, *args.CardID)

	case services.CmdIncrementWordCardSeenCount:
		if args.CardID == nil {
			return nil, missingArg(command, "cardId")
		}
		return nil, h.cards.IncrementWordCardSeenCount(ctx, *args.CardID)

	case services.CmdTestDatabaseConnection:
		return h.cards.TestDatabaseConnection(ctx)
	}

	return nil, &models.Error{
		Kind:    models.KindNotFound,
		Op:      "invoke",
		Key:     command,
		Message: fmt.Sprintf("unknown command %q", command),
	}
}

// ListCards handles GET /api/v1/cards
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.GetAllWordCards(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeData(w, http.StatusOK, cards)
}

// SaveCard handles POST /api/v1/cards
func (h *Handler) SaveCard(w http.ResponseWriter, r *http.Request) {
	var card models.NewWordCard
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&card); err != nil {
		writeError(w, http.StatusBadRequest, string(models.KindValidation), "invalid request body")
		return
	}

	if err := h.cards.SaveWordCard(r.Context(), &card); err != nil {
		writeCommandError(w, err)
		return
	}

	stored, err := h.cards.GetWordCardByWord(r.Context(), card.Word)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeData(w, http.StatusOK, stored)
}

// GetCardByWord handles GET /api/v1/cards/by-word/{word}
func (h *Handler) GetCardByWord(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	// chi matches on the raw path when it differs from the decoded one,
	// leaving escapes such as %2F in the parameter
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(word)
		if err != nil {
			writeError(w, http.StatusBadRequest, string(models.KindValidation), "invalid word in path")
			return
		}
		word = unescaped
	}

	card, err := h.cards.GetWordCardByWord(r.Context(), word)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, string(models.KindNotFound),
			fmt.Sprintf("word card %q not found", word))
		return
	}
	writeData(w, http.StatusOK, card)
}

// familiarityRequest is the body of PUT /api/v1/cards/{id}/familiarity
type familiarityRequest struct {
	Level *int `json:"level"`
}

// UpdateFamiliarity handles PUT /api/v1/cards/{id}/familiarity
func (h *Handler) UpdateFamiliarity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req familiarityRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Level == nil {
		writeError(w, http.StatusBadRequest, string(models.KindValidation), services.MsgInvalidFamiliarity)
		return
	}

	if err := h.cards.UpdateWordCardFamiliarity(r.Context(), id, *req.Level); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IncrementSeen handles POST /api/v1/cards/{id}/seen
func (h *Handler) IncrementSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.cards.IncrementWordCardSeenCount(r.Context(), id); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCard handles DELETE /api/v1/cards/{id}
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.cards.DeleteWordCard(r.Context(), id); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseID reads the {id} path parameter, writing a 400 when it is not a number
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(models.KindValidation), services.MsgInvalidID)
		return 0, false
	}
	return id, true
}

// ImportWords handles POST /api/v1/cards/import. The word list is either
// the "file" field of a multipart form or the raw request body, one word
// per line.
func (h *Handler) ImportWords(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = io.LimitReader(r.Body, maxBodyBytes)

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			writeError(w, http.StatusBadRequest, string(models.KindValidation), "failed to parse form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, string(models.KindValidation), "file is required")
			return
		}
		defer file.Close()
		src = file
	}

	words, err := services.ParseWordList(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(models.KindValidation), err.Error())
		return
	}
	if len(words) == 0 {
		writeError(w, http.StatusBadRequest, string(models.KindValidation), "no words to import")
		return
	}

	summary, err := h.importer.ImportWords(r.Context(), words)
	if err != nil {
		h.log.WarnContext(r.Context(), "import interrupted", "error", err, "imported", summary.Success)
	}
	writeData(w, http.StatusOK, summary)
}

// ExportCards handles GET /api/v1/cards/export
func (h *Handler) ExportCards(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=word_cards.csv")

	if err := h.cards.ExportCSV(r.Context(), w); err != nil {
		// Reset headers since we already set them
		w.Header().Del("Content-Disposition")
		writeCommandError(w, err)
		return
	}
}

// HealthResponse reports the service version and store status
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	msg, err := h.cards.TestDatabaseConnection(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "degraded",
			Version:  h.version,
			Database: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Database: msg,
	})
}
