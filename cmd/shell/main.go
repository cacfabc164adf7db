package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/accountable/internal/app/console"
	"github.com/magabrotheeeer/accountable/internal/config"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	// stdout занят диалогом с пользователем
	logger := sl.New(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := console.New(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("failed to initialize shell", sl.Err(err))
		os.Exit(1)
	}

	fmt.Println("Accountable shell. Type help for commands.")
	if err := app.Run(ctx); err != nil {
		logger.Error("shell stopped with error", sl.Err(err))
		os.Exit(1)
	}
}
