package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nekogravitycat/workplace-booking/internal/bookingform"
	"github.com/nekogravitycat/workplace-booking/internal/config"
	"github.com/nekogravitycat/workplace-booking/internal/console"
	"github.com/nekogravitycat/workplace-booking/internal/gateway"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/storage"
	"github.com/nekogravitycat/workplace-booking/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Stdout belongs to the console.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	st, err := storage.NewLocalStorage(cfg.SessionDir)
	if err != nil {
		log.Fatalf("failed to open session directory: %v", err)
	}
	store := session.NewStore(st, session.WithTTL(cfg.SessionTTL), session.WithLogger(logger))

	gw := gateway.NewHTTPGateway(cfg.APIBaseURL,
		gateway.WithTokenSource(store.AccessToken),
		gateway.WithLogger(logger),
	)

	prompter := console.NewPrompter(os.Stdin, os.Stdout)
	form := bookingform.NewController(bookingform.Config{
		Gateway:   gw,
		Identity:  store.UserID,
		Confirmer: prompter,
		Logger:    logger,
	})

	c := console.New(form, session.NewAuthenticator(gw, store, logger), prompter, os.Stdout, logger)
	if err := c.Run(ctx); err != nil {
		log.Fatalf("client error: %v", err)
	}
}
