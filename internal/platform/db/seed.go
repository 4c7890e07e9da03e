package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfreview/internal/domain/identity"
	"perfreview/internal/platform/config"
)

// Seed ensures the admin account exists and, outside production, a small
// demo org with a competency library so the API is explorable immediately.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminPassword == "" {
		slog.Warn("seed skipped: SEED_ADMIN_PASSWORD not set")
		return nil
	}

	adminID, err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if _, err := ensureEmployee(ctx, pool, adminID, "HR Admin", "People", ""); err != nil {
		return err
	}

	if !cfg.SeedDemoData {
		return nil
	}
	return seedDemo(ctx, pool, cfg.SeedAdminPassword)
}

func seedDemo(ctx context.Context, pool *pgxpool.Pool, password string) error {
	managerUserID, err := ensureUser(ctx, pool, "manager@example.com", password, identity.RoleManager)
	if err != nil {
		return err
	}
	managerEmpID, err := ensureEmployee(ctx, pool, managerUserID, "Morgan Lee", "Engineering", "")
	if err != nil {
		return err
	}

	for _, emp := range []struct {
		email string
		name  string
	}{
		{"alex@example.com", "Alex Rivera"},
		{"sam@example.com", "Sam Chen"},
	} {
		userID, err := ensureUser(ctx, pool, emp.email, password, identity.RoleEmployee)
		if err != nil {
			return err
		}
		if _, err := ensureEmployee(ctx, pool, userID, emp.name, "Engineering", managerEmpID); err != nil {
			return err
		}
	}

	for _, comp := range []struct {
		name     string
		category string
	}{
		{"Technical Skills", "craft"},
		{"Communication", "collaboration"},
		{"Leadership", "collaboration"},
		{"Problem Solving", "craft"},
	} {
		_, err := pool.Exec(ctx, `
      INSERT INTO competencies (name, category, departments, criteria_json)
      VALUES ($1, $2, '{}', '[]')
      ON CONFLICT (name) DO NOTHING
    `, comp.name, comp.category)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, role string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return "", err
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id
  `, email, hash, role).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureEmployee(ctx context.Context, pool *pgxpool.Pool, userID, displayName, department, managerID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO employees (user_id, display_name, department, manager_id)
    VALUES ($1, $2, $3, NULLIF($4, '')::uuid)
    RETURNING id
  `, userID, displayName, department, managerID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
