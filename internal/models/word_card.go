package models

// WordCard represents a stored vocabulary flashcard
type WordCard struct {
	ID            *int64  `json:"id"`
	Word          string  `json:"word"`
	Pos           *string `json:"pos"`
	Definition    *string `json:"definition"`
	Pronunciation *string `json:"pronunciation"`
	Verbs         *string `json:"verbs"`
	Familiarity   *int    `json:"familiarity"`
	SeenCount     *int    `json:"seen_count"`
	CreatedAt     *string `json:"created_at"`
}

// NewWordCard is the payload for saving a word card.
// Nil Familiarity and SeenCount fall back to the column defaults (0 and 1).
type NewWordCard struct {
	Word          string  `json:"word"`
	Pos           *string `json:"pos,omitempty"`
	Definition    *string `json:"definition,omitempty"`
	Pronunciation *string `json:"pronunciation,omitempty"`
	Verbs         *string `json:"verbs,omitempty"`
	Familiarity   *int    `json:"familiarity,omitempty" validate:"omitempty,min=0,max=3"`
	SeenCount     *int    `json:"seen_count,omitempty"`
}

const (
	// MinFamiliarity is the lowest familiarity level a card can hold
	MinFamiliarity = 0
	// MaxFamiliarity is the highest familiarity level a card can hold
	MaxFamiliarity = 3
)

// DictionaryEntry represents a response from the dictionary API
type DictionaryEntry struct {
	Word      string     `json:"word"`
	Phonetic  string     `json:"phonetic,omitempty"`
	Phonetics []Phonetic `json:"phonetics,omitempty"`
	Meanings  []Meaning  `json:"meanings"`
	SourceURL string     `json:"sourceUrl,omitempty"`
}

// Phonetic represents pronunciation information
type Phonetic struct {
	Text  string `json:"text,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// Meaning groups definitions under one part of speech
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
	Synonyms     []string     `json:"synonyms,omitempty"`
	Antonyms     []string     `json:"antonyms,omitempty"`
}

// Definition represents a single definition
type Definition struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`
	Antonyms   []string `json:"antonyms,omitempty"`
}

// DictionaryResponse is the condensed lookup result used to build cards
type DictionaryResponse struct {
	Word       string    `json:"word"`
	Phonetic   string    `json:"phonetic,omitempty"`
	AudioURL   string    `json:"audio_url,omitempty"`
	Meanings   []Meaning `json:"meanings"`
	SourceURLs []string  `json:"source_urls,omitempty"`
}

// Pronunciation is the JSON shape stored in WordCard.Pronunciation by imports
type Pronunciation struct {
	Phonetic string `json:"phonetic"`
	Audio    string `json:"audio"`
}
