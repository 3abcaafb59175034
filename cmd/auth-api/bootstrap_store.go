package main

import (
	"context"

	config "github.com/NordCoder/Authly/internal/config/auth-api"
	"github.com/NordCoder/Authly/internal/domain/session"
	pg "github.com/NordCoder/Authly/internal/repository/postgres"
	"github.com/NordCoder/Authly/internal/repository/redisstore"
)

// initStore selects the refresh-token store backend. Postgres shares the
// main pool; redis keeps records with a TTL matching the refresh TTL.
func initStore(cfg *config.Config, db *pg.DB) (session.Store, func(context.Context) error, func(), error) {
	if cfg.Store.Driver == "redis" {
		client := redisstore.NewClient(cfg.Store.Redis)
		store := redisstore.New(client, cfg.Auth.RefreshTTL)
		return store, store.Ping, func() { _ = client.Close() }, nil
	}

	store := pg.NewTokenRepo(db)
	noop := func(context.Context) error { return nil }
	return store, noop, func() {}, nil
}
