package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
