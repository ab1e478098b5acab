package config

const (
	// AppName names the per-user data directory
	AppName = "vocab-flashcards"

	// DatabaseFileName is the SQLite file inside the data directory
	DatabaseFileName = "word_cards.db"

	// DevelopmentDataDir is the project-local directory used outside release builds
	DevelopmentDataDir = "db"

	DefaultHost          = "127.0.0.1"
	DefaultPort          = 8474
	DefaultLogMaxAgeDays = 7
	DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
)
