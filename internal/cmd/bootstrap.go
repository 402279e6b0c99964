package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jask/taskpad/internal/config"
	"github.com/jask/taskpad/internal/database"
	"github.com/jask/taskpad/internal/database/repository"
	"github.com/jask/taskpad/internal/logging"
	"github.com/jask/taskpad/internal/session"
	"github.com/jask/taskpad/internal/tokenstore"
)

// app is the process-wide object graph shared by every command.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	db      *sql.DB
	store   tokenstore.Store
	session *session.Manager
	closers []io.Closer
}

func bootstrap(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, logCloser, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}
	a.session = session.NewManager(a.store,
		session.WithLogger(log),
		session.WithStoreTimeout(cfg.Storage.Timeout),
	)
	log.Debug("bootstrapped", slog.String("backend", cfg.Storage.Backend))
	return a, nil
}

func (a *app) openStore() error {
	cfg := a.cfg
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.OpenMigrated(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open token database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db)
		a.store = tokenstore.NewSQLite(repository.NewKVRepo(db), cfg.Storage.Key)
	case config.BackendFile:
		store, err := tokenstore.NewFile(cfg.File.Dir, cfg.Storage.Key)
		if err != nil {
			return err
		}
		a.store = store
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb)
		a.store = tokenstore.NewRedis(rdb, cfg.Redis.Prefix, cfg.Storage.Key)
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
