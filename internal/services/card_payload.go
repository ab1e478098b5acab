package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lehmann314159/vocabcards/internal/models"
)

// CardFromDictionary shapes a dictionary lookup into a card payload.
//
// pos holds a JSON array of the parts of speech. definition holds one block
// per definition, "[pos] text" followed by optional Example, Synonyms and
// Antonyms lines, with blocks separated by a blank line. pronunciation
// holds a JSON models.Pronunciation.
func CardFromDictionary(resp *models.DictionaryResponse) (*models.NewWordCard, error) {
	parts := make([]string, 0, len(resp.Meanings))
	var blocks []string
	for _, m := range resp.Meanings {
		parts = append(parts, m.PartOfSpeech)
		for _, d := range m.Definitions {
			blocks = append(blocks, definitionBlock(m, d))
		}
	}

	pos, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parts of speech: %w", err)
	}
	pronunciation, err := json.Marshal(models.Pronunciation{
		Phonetic: resp.Phonetic,
		Audio:    resp.AudioURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pronunciation: %w", err)
	}

	familiarity, seenCount := models.MinFamiliarity, 1
	return &models.NewWordCard{
		Word:          resp.Word,
		Pos:           stringPtr(string(pos)),
		Definition:    stringPtr(strings.Join(blocks, "\n\n")),
		Pronunciation: stringPtr(string(pronunciation)),
		Verbs:         stringPtr("{}"),
		Familiarity:   &familiarity,
		SeenCount:     &seenCount,
	}, nil
}

func definitionBlock(m models.Meaning, d models.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", m.PartOfSpeech, d.Definition)

	if d.Example != "" {
		fmt.Fprintf(&b, "\nExample: %s", d.Example)
	}

	// Definition-level lists take precedence over the meaning-level ones
	synonyms, antonyms := d.Synonyms, d.Antonyms
	if synonyms == nil {
		synonyms = m.Synonyms
	}
	if antonyms == nil {
		antonyms = m.Antonyms
	}
	if len(synonyms) > 0 {
		fmt.Fprintf(&b, "\nSynonyms: %s", strings.Join(synonyms, ", "))
	}
	if len(antonyms) > 0 {
		fmt.Fprintf(&b, "\nAntonyms: %s", strings.Join(antonyms, ", "))
	}

	return b.String()
}

func stringPtr(s string) *string {
	return &s
}
