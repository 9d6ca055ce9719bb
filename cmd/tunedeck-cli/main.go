package main

import (
	"os"

	"github.com/tunedeck/tunedeck/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
