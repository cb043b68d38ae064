package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gowiki/internal/config"
	"gowiki/internal/database"
	"gowiki/internal/page"
)

// app is everything a command needs once startup succeeded.
type app struct {
	cfg  config.Config
	log  *logrus.Logger
	pool *database.Pool
	svc  *page.Service
}

// startApp loads the configuration, opens the pool and starts the page
// service. Any failure aborts startup and releases what was already opened.
func startApp(ctx context.Context, configFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(config.New(), configFile)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}

	queries, err := database.LoadQueries(cfg.DB.QueriesFile)
	if err != nil {
		logger.WithError(err).Error("could not load query definitions")
		return nil, err
	}

	pool, err := database.Open(database.Options{
		Driver:         cfg.DB.Driver,
		URL:            cfg.DB.URL,
		MaxPoolSize:    cfg.DB.MaxPoolSize,
		AcquireTimeout: cfg.DB.AcquireTimeout,
	})
	if err != nil {
		logger.WithError(err).Error("could not open database")
		return nil, err
	}

	svc, err := page.Start(ctx, page.NewRepository(pool, queries), logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"driver":    cfg.DB.Driver,
		"pool_size": cfg.DB.MaxPoolSize,
	}).Info("page service started")

	return &app{cfg: cfg, log: logger, pool: pool, svc: svc}, nil
}

// close stops the page service before the pool it borrows connections from.
func (a *app) close() {
	a.svc.Close()
	if err := a.pool.Close(); err != nil {
		a.log.WithError(err).Warn("could not close database pool")
	}
}
