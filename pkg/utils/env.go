package utils

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv loads the given .env files into the process environment and returns
// a snapshot of the resulting environment. Files that do not exist are skipped,
// and variables already set in the environment are never overridden
func LoadEnv(files ...string) map[string]string {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}

		if err := godotenv.Load(file); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("could not load env file")
		}
	}

	config := make(map[string]string)
	for _, env := range os.Environ() {
		key, value, found := strings.Cut(env, "=")
		if found && key != "" {
			config[key] = value
		}
	}

	return config
}

// EnvFile returns the .env file to load, honoring the ENV_FILE override
func EnvFile() string {
	if file := os.Getenv("ENV_FILE"); file != "" {
		return file
	}
	return ".env"
}
