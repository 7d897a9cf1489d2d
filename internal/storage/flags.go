package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
)

// ReplaceFlags swaps the entire flag collection in one transaction. The
// embedded expense copy is rehydrated from the expenses table on read, so
// only the expense ID is stored here.
func (s *SQLiteStore) ReplaceFlags(ctx context.Context, flags []model.AnomalyFlag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM anomaly_flags"); err != nil {
		return fmt.Errorf("failed to clear flags: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anomaly_flags (id, expense_id, kind, severity, confidence, rule_details, ai_explanation, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range flags {
		if _, err := stmt.ExecContext(ctx,
			f.ID,
			f.ExpenseID,
			string(f.Kind),
			string(f.Severity),
			f.Confidence,
			f.RuleDetails,
			f.AIExplanation,
			f.CreatedAt.Format(time.RFC3339),
			i,
		); err != nil {
			return fmt.Errorf("failed to insert flag %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// ListFlags returns flags in creation order, optionally filtered by severity.
func (s *SQLiteStore) ListFlags(ctx context.Context, severity model.Severity) ([]model.AnomalyFlag, error) {
	query := `
		SELECT id, expense_id, kind, severity, confidence, rule_details, ai_explanation, created_at
		FROM anomaly_flags
	`
	args := []any{}
	if severity != "" {
		query += " WHERE severity = ?"
		args = append(args, string(severity))
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var flags []model.AnomalyFlag
	for rows.Next() {
		flag, err := s.scanFlag(ctx, rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, *flag)
	}
	return flags, rows.Err()
}

// GetFlag returns the flag with the given ID.
func (s *SQLiteStore) GetFlag(ctx context.Context, id string) (*model.AnomalyFlag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, expense_id, kind, severity, confidence, rule_details, ai_explanation, created_at
		FROM anomaly_flags WHERE id = ?
	`, id)

	flag, err := s.scanFlag(ctx, row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("flag %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return flag, nil
}

// SetExplanation attaches an AI explanation to an existing flag.
func (s *SQLiteStore) SetExplanation(ctx context.Context, id, explanation string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE anomaly_flags SET ai_explanation = ? WHERE id = ?", explanation, id)
	if err != nil {
		return fmt.Errorf("failed to update flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("flag %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) scanFlag(ctx context.Context, row rowScanner) (*model.AnomalyFlag, error) {
	var f model.AnomalyFlag
	var kind, severity, createdAt string
	if err := row.Scan(&f.ID, &f.ExpenseID, &kind, &severity, &f.Confidence, &f.RuleDetails, &f.AIExplanation, &createdAt); err != nil {
		return nil, err
	}
	f.Kind = model.AnomalyKind(kind)
	f.Severity = model.Severity(severity)

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for flag %s: %w", f.ID, err)
	}
	f.CreatedAt = parsed

	// The flagged expense may have been deleted since the detection run;
	// the flag survives with only the ID in that case. Any other lookup
	// failure is a real storage error.
	expense, err := s.GetExpense(ctx, f.ExpenseID)
	switch {
	case err == nil:
		f.Expense = *expense
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to load expense for flag %s: %w", f.ID, err)
	}
	return &f, nil
}
