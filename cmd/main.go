package main

import (
	"os"

	"quiz-delivery/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
