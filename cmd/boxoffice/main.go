package main

import (
	"os"

	"github.com/cinemetric/boxoffice/cmd/boxoffice/commands"
)

// main is the entry point for the boxoffice CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
