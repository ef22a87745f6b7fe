// Package main is the entry point for the wikihop CLI tool.
package main

import (
	"github.com/wikihop/wikihop/internal/cmd"
)

func main() {
	cmd.Execute()
}
