package main

import (
	"os"

	"github.com/oxygenesis/wipecert/cmd/wipecert/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
