package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/quill-cli/internal/adapters/driving/cli"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Optional .env for API keys during development.
	_ = godotenv.Load()

	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
