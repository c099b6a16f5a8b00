// Command checkind runs the CheckIn account session service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/checkinapp/checkin/internal/account/controller"
	"github.com/checkinapp/checkin/internal/account/events"
	"github.com/checkinapp/checkin/internal/account/remote"
	accountsqlite "github.com/checkinapp/checkin/internal/account/store/sqlite"
	"github.com/checkinapp/checkin/internal/api"
	"github.com/checkinapp/checkin/internal/platform/config"
	"github.com/checkinapp/checkin/internal/platform/otel"
)

type serviceConfig struct {
	Addr        string `env:"CHECKIN_ADDR" envDefault:"localhost:8080"`
	DBPath      string `env:"CHECKIN_DB_PATH" envDefault:"data/account.db"`
	BackendURL  string `env:"CHECKIN_BACKEND_URL" envDefault:"https://api.checkinapp.example"`
	TokenSecret string `env:"CHECKIN_TOKEN_SECRET,required"`
}

func main() {
	log.SetPrefix("[CHECKIND] ")

	var cfg serviceConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "checkind")
	if err != nil {
		config.Exitf("setup tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			config.Exitf("create storage dir: %v", err)
		}
	}
	store, err := accountsqlite.Open(cfg.DBPath)
	if err != nil {
		config.Exitf("open account store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close account store: %v", err)
		}
	}()

	backend, err := remote.NewClient(cfg.BackendURL, nil)
	if err != nil {
		config.Exitf("configure backend client: %v", err)
	}

	broker := events.NewBroker()
	broker.Subscribe(events.UserAuthenticated{}.Name(), func(_ context.Context, event events.Event) {
		log.Printf("user authenticated: %s", event.(events.UserAuthenticated).Username)
	})
	broker.Subscribe(events.HeaderStatsReady{}.Name(), func(_ context.Context, event events.Event) {
		log.Printf("header stats ready: %s", event.(events.HeaderStatsReady).Username)
	})

	accounts, err := controller.New(ctx, controller.Config{
		Store: store,
		Auth:  backend,
		Cache: store,
		Bus:   broker,
	})
	if err != nil {
		config.Exitf("bootstrap account controller: %v", err)
	}
	defer accounts.Close()

	tokens, err := api.NewTokenIssuer([]byte(cfg.TokenSecret), nil)
	if err != nil {
		config.Exitf("configure token issuer: %v", err)
	}

	server, err := api.New(cfg.Addr, accounts, tokens)
	if err != nil {
		config.Exitf("configure API server: %v", err)
	}
	if err := server.Serve(ctx); err != nil {
		config.Exitf("serve: %v", err)
	}
}
