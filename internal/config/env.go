package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LocalEnvFile is read before the environment when APP_ENV is "local".
const LocalEnvFile = ".env.local"

// LoadEnv loads LocalEnvFile when APP_ENV is "local". Variables already set
// in the process environment are not overridden. A missing file is reported
// on stderr and otherwise ignored because the logger is not built yet.
func LoadEnv() {
	if os.Getenv("APP_ENV") != "local" {
		return
	}
	if err := godotenv.Load(LocalEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", LocalEnvFile, err)
	}
}
