// Command importer loads the ingredient catalogue from a CSV or JSON file.
//
//	importer -d recipes.db -t sqlite -delimiter ';' ingredients.csv
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/db"
	"github.com/danielhkuo/recipe-box/importer"
	"github.com/danielhkuo/recipe-box/logging"
)

func main() {
	logging.New(logging.Options{Service: "importer", Level: os.Getenv("LOG_LEVEL")})

	cfg, err := cliparse.ParseImportFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("import failed", "error", err, "path", cfg.Path)
		os.Exit(1)
	}
}

func run(cfg cliparse.ImportConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(cfg.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		return err
	}

	res, err := importer.Ingredients(ctx, conn, f, importer.Options{
		Format:    cfg.Format,
		Delimiter: cfg.Delimiter,
	})
	if err != nil {
		return err
	}

	slog.Info("import finished", "created", res.Created, "skipped", res.Skipped)
	return nil
}
