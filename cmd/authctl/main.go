package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/admin/cli"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		cli.Usage(os.Stderr)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("", os.Stderr, false).Error(ctx, "config", "error", err)
		return 1
	}
	log := logging.New(cfg.LogBackend, os.Stderr, cfg.Debug).With("module", "authctl")

	db, err := dbx.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "database", "error", err)
		return 1
	}
	defer db.Close()

	app := cli.NewApp(db, repomanager.NewPostgresRepositoryManager(), os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Error(ctx, "command failed", "command", os.Args[1], "error", err)
		return 1
	}
	return 0
}
