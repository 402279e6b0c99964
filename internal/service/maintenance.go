package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/taskpad/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all locally stored values, the token included. It keeps the
// schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	var removed int64
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM kv")
		if err != nil {
			return fmt.Errorf("reset table kv: %w", err)
		}
		removed, _ = res.RowsAffected()
		return nil
	}); err != nil {
		return 0, err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return removed, nil
}
