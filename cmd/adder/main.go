package main

import (
	"flag"
	"os"

	"github.com/reinodovo/custom-bots/internal/config"
	"github.com/reinodovo/custom-bots/internal/database"
	"github.com/reinodovo/custom-bots/internal/registrar"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	envFile := flag.String("env", ".env", "Path to the .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Error("failed to load configuration")
		return 1
	}

	db, err := database.NewMongoDatabase(cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		logrus.WithError(err).Error("failed to connect to database")
		return 1
	}
	defer db.Close()

	if _, err := registrar.New(store.NewStore(db), os.Stdin, os.Stdout).Run(); err != nil {
		return 1
	}
	return 0
}
