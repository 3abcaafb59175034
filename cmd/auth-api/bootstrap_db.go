package main

import (
	"context"

	config "github.com/NordCoder/Authly/internal/config/auth-api"
	pg "github.com/NordCoder/Authly/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.New(ctx, cfg.DB)
}
