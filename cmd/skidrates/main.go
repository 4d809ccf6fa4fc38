// Package main is the entry point for the skidrates CLI.
package main

import (
	"os"

	"github.com/JonMunkholm/skidrates/cmd/skidrates/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
