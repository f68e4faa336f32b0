package main

import (
	"os"

	"github.com/lettbooks-dev/lettbooks/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
