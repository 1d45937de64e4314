package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/reinodovo/custom-bots/internal/bot"
	"github.com/reinodovo/custom-bots/internal/config"
	"github.com/reinodovo/custom-bots/internal/database"
	"github.com/reinodovo/custom-bots/internal/logging"
	"github.com/reinodovo/custom-bots/internal/runner"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	envFile := flag.String("env", ".env", "Path to the .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Error("failed to load configuration")
		return 1
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFile)

	db, err := database.NewMongoDatabase(cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		logger.WithError(err).Error("failed to connect to database")
		return 1
	}
	defer db.Close()
	logger.WithField("database", cfg.DatabaseName).Info("connected to mongodb")

	settings := bot.Settings{MasterOwner: cfg.MasterOwner, AllCogs: cfg.AllCogs}
	r := runner.New(store.NewStore(db), settings, bot.NewDiscordSession, logger)
	if err := r.Run(ctx); err != nil {
		logger.WithError(err).Error("runner stopped with errors")
		return 1
	}
	logger.Info("shut down")
	return 0
}
