// Package main is the entry point for the automark CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/automark/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
