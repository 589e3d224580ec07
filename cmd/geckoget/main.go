package main

import (
	"os"

	"github.com/seleniumkit/geckoget/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
