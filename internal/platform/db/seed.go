package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/auth"
	"pms/internal/platform/config"
)

// Seed ensures an admin user exists so a fresh database is usable. It is
// idempotent and never overwrites an existing user's password.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	password := cfg.SeedAdminPassword
	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin-change-me"
	}
	return ensureUser(ctx, pool, email, "Administrator", auth.RoleAdmin, password)
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, fullName string, role auth.Role, password string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, full_name, role, password_hash)
    VALUES ($1, $2, $3, $4)
  `, email, fullName, string(role), hash)
	return err
}
