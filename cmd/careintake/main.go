package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"careintake-server/pkg/assessment"
	"careintake-server/pkg/config"
	"careintake-server/pkg/database"
	httpapi "careintake-server/pkg/http"
	"careintake-server/pkg/messaging"
	"careintake-server/pkg/metrics"
	"careintake-server/pkg/safecare"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	cfg.ConfigureLogger(logger)

	metrics.Init(logger)

	engine := assessment.NewEngine(logger)
	classifier := safecare.NewClassifier(logger)

	var repo *database.Repository
	if cfg.Database.Enabled {
		db, r, err := database.InitializeDatabase(logger)
		if err != nil {
			logger.WithError(err).Fatal("Database initialization failed")
		}
		defer db.Close()
		repo = r
	} else {
		logger.Info("Persistence disabled, running analysis-only")
	}

	amqpConfig := messaging.DefaultAMQPConfig()
	amqpConfig.URL = cfg.AMQP.URL
	amqpConfig.Exchange = cfg.AMQP.Exchange
	publisher := messaging.NewAMQPClient(amqpConfig, logger)
	if err := publisher.Connect(); err != nil {
		logger.WithError(err).Warn("AMQP connect failed, continuing without messaging")
	}
	defer publisher.Disconnect()

	server := httpapi.NewServer(logger, &httpapi.Config{
		Port:          cfg.HTTP.Port,
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		EnableMetrics: cfg.HTTP.EnableMetrics,
	}, engine, classifier, repo, publisher)
	server.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("HTTP shutdown failed")
	}

	logger.Info("Server stopped")
}
