package main

import (
	"os"

	"csvdash/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		cli.Error(os.Stderr, err)
		os.Exit(1)
	}
}
