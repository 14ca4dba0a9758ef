package main

import (
	"os"

	"skynest/cmd/skynestctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
