// Package main provides the entry point for the refmine CLI tool.
package main

import (
	"os"

	"github.com/Sumatoshi-tech/refmine/cmd/refmine/commands"
)

func main() {
	os.Exit(commands.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
