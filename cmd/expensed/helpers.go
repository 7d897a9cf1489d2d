package main

import (
	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/config"
	"github.com/expensed-ai/expensed/internal/service"
	"github.com/expensed-ai/expensed/internal/storage"
)

// openStore picks the SQLite store when a database path is configured and
// the in-memory store otherwise.
func openStore(cfg config.Config) (service.Store, error) {
	if cfg.StoragePath == "" {
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewSQLiteStore(cfg.StoragePath)
	if err != nil {
		return nil, common.NewUserError("failed to open storage", err)
	}
	return store, nil
}
