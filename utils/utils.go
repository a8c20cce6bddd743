package utils

import (
	"math/rand"
	"os"

	"github.com/Mankeylol/lolly-leaderboard-backend/utils/dotenv"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// IsProdEnv returns true iff the current binary runs in the production
// environment.
func IsProdEnv() bool {
	return os.Getenv("LOLLY_ENV") == dotenv.ProdEnv
}

// RandomAlphabetString generates a random string of lower case alphabet, of
// length n.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// GetEnvOrDefault reads an environment variable, falling back to the provided
// default when unset.
func GetEnvOrDefault(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
