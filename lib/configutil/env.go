package configutil

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotenv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		err := godotenv.Load(f)
		if err != nil {
			slog.Warn("failed to load dotenv file", "file", f, "err", err)
			continue
		}
		slog.Debug("loaded dotenv file", "file", f)
	}
}

// OverrideFromEnv replaces each *dst with the value of its environment
// variable when that variable is set and non-empty.
func OverrideFromEnv(overrides map[string]*string) {
	for key, dst := range overrides {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}
		*dst = value
	}
}
