// Package main provides the codingwithyou CLI application entry point.
// codingwithyou sends selected code to a chat-completion API and writes the answer into a side-by-side document.
package main

import (
	"context"
	"os"

	"codingwithyou/internal/cli"
)

func main() {
	if err := cli.NewApp().Execute(context.Background(), nil); err != nil {
		os.Exit(1)
	}
}
