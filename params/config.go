package params

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs at startup. There is no
// persistence layer: the exchange is ephemeral by design.
type Config struct {
	MaxBooks      int    // upper bound on (venue, symbol) books
	Port          int    // HTTP port
	DefaultVenue  string // pre-created at startup
	DefaultSymbol string
	AccountsFile  string // JSON map of account -> API key; empty disables auth
	Extras        bool   // enables diagnostic endpoints (positions, status-all, debug)
	LogFile       string // tee logs to a file when set
}

func Default() Config {
	return Config{
		MaxBooks:      100,
		Port:          8000,
		DefaultVenue:  "TESTEX",
		DefaultSymbol: "FOOBAR",
		AccountsFile:  "",
		Extras:        false,
		LogFile:       "",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("DISORDERBOOK_MAXBOOKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBooks = n
		}
	}
	if v := os.Getenv("DISORDERBOOK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("DISORDERBOOK_VENUE"); v != "" {
		cfg.DefaultVenue = v
	}
	if v := os.Getenv("DISORDERBOOK_SYMBOL"); v != "" {
		cfg.DefaultSymbol = v
	}
	if v := os.Getenv("DISORDERBOOK_ACCOUNTS"); v != "" {
		cfg.AccountsFile = v
	}
	if v := os.Getenv("DISORDERBOOK_EXTRAS"); v != "" {
		cfg.Extras = v == "true" || v == "1"
	}
	if v := os.Getenv("DISORDERBOOK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return cfg
}
