package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lehmann314159/vocabcards/internal/models"
)

const defaultTimeout = 10 * time.Second

// ErrWordNotFound is returned when the dictionary has no entry for a word
var ErrWordNotFound = errors.New("word not found in dictionary")

// DictionaryService looks words up in a dictionaryapi.dev compatible API
type DictionaryService struct {
	client  *http.Client
	baseURL string
}

// NewDictionaryService creates a dictionary service for the API at baseURL
func NewDictionaryService(baseURL string) *DictionaryService {
	return NewDictionaryServiceWithClient(&http.Client{Timeout: defaultTimeout}, baseURL)
}

// NewDictionaryServiceWithClient creates a dictionary service with a custom HTTP client
func NewDictionaryServiceWithClient(client *http.Client, baseURL string) *DictionaryService {
	return &DictionaryService{
		client:  client,
		baseURL: baseURL,
	}
}

// Lookup fetches the entries for word and condenses them into one response
func (s *DictionaryService) Lookup(ctx context.Context, word string) (*models.DictionaryResponse, error) {
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch definition of %q: %w", word, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrWordNotFound
	default:
		return nil, fmt.Errorf("dictionary API returned status %d", resp.StatusCode)
	}

	var entries []models.DictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrWordNotFound
	}

	return condense(entries), nil
}

// condense merges API entries: word and phonetic come from the first entry,
// meanings and source URLs from all of them
func condense(entries []models.DictionaryEntry) *models.DictionaryResponse {
	first := entries[0]
	response := &models.DictionaryResponse{
		Word:     first.Word,
		Phonetic: first.Phonetic,
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		response.Meanings = append(response.Meanings, e.Meanings...)

		for _, p := range e.Phonetics {
			if response.AudioURL == "" && p.Audio != "" {
				response.AudioURL = p.Audio
			}
			if response.Phonetic == "" && p.Text != "" {
				response.Phonetic = p.Text
			}
		}

		if e.SourceURL != "" && !seen[e.SourceURL] {
			response.SourceURLs = append(response.SourceURLs, e.SourceURL)
			seen[e.SourceURL] = true
		}
	}

	return response
}
