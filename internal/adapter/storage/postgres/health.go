package postgres

import (
	"context"
	"errors"
	"fmt"
)

// HealthCheck reports whether the journal database is reachable and migrated.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var migrated bool
	if err := h.pool.QueryRow(ctx, `SELECT to_regclass('ledger_transactions') IS NOT NULL`).Scan(&migrated); err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}
	if !migrated {
		return errors.New("postgres health: ledger_transactions table missing")
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
