package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv pulls in .env for local development. Missing files are fine:
// deployed environments pass real env vars.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
}
