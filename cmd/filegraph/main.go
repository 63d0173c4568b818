// Command filegraph scans a project's documentation and script files for
// references to one another, writes the resulting file graph, and analyzes
// its structure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// version is set by the linker at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return newApp(os.Stdout, os.Stderr).execute(ctx, args)
}
