package main

import (
	"os"

	"github.com/novopnp/painel/cmd/painel/commands"
)

// main is the entry point for the painel CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
