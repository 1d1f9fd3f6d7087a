package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"credit-card-account/internal/account"
	"credit-card-account/internal/config"
	"credit-card-account/internal/console"
	"credit-card-account/internal/logger"
	"credit-card-account/internal/model"
	"credit-card-account/internal/notify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cardmenu: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Menu output goes to stdout; zap's development config logs to stderr.
	cfg.Logger.Format = "console"
	closeLog, err := logger.Init(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	acc := account.New(
		cfg.Card.Number,
		cfg.Card.Holder,
		cfg.Card.Expiration,
		cfg.Card.Pin,
		cfg.Card.CreditLimit,
		cfg.Card.Balance,
	)
	notify.NewPrinter(os.Stdout).Attach(acc)

	log := logger.With(zap.String("card_suffix", model.CardSuffix(cfg.Card.Number)))
	log.Info("session started")

	if err := console.NewMenu(acc, os.Stdin, os.Stdout, log).Run(context.Background()); err != nil {
		return fmt.Errorf("menu: %w", err)
	}

	log.Info("session ended",
		zap.String("balance", acc.Balance().String()),
		zap.Bool("credit_in_use", acc.CreditInUse()),
	)
	return nil
}
