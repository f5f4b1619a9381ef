// Package main provides the importer CLI. It loads the main and
// supplementary accident files into PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := getRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
