// Command server runs the film catalog API and its schema migrations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	app := &cli.Command{
		Name:    "filmcatalog",
		Version: version,
		Usage:   "Actor and film catalog service",
		Commands: []*cli.Command{
			serveCommand(envErr),
			migrateCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
