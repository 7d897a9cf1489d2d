package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/expensed-ai/expensed/internal/common"
	"github.com/expensed-ai/expensed/internal/model"
	"github.com/expensed-ai/expensed/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the expense and flag store interfaces on SQLite.
// Rows keep their rowid across upserts, so insertion order survives
// re-uploads the same way the in-memory store's order slice does.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath is required: %w", common.ErrInvalidConfig)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		vendor TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		submitted_by TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS anomaly_flags (
		id TEXT PRIMARY KEY,
		expense_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		severity TEXT NOT NULL,
		confidence REAL NOT NULL,
		rule_details TEXT NOT NULL DEFAULT '',
		ai_explanation TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		seq INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_flags_severity ON anomaly_flags(severity);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertExpense inserts or replaces a single expense.
func (s *SQLiteStore) UpsertExpense(ctx context.Context, expense model.Expense) error {
	return s.UpsertExpenses(ctx, []model.Expense{expense})
}

// UpsertExpenses inserts or replaces a batch of expenses in one transaction.
func (s *SQLiteStore) UpsertExpenses(ctx context.Context, expenses []model.Expense) error {
	for i := range expenses {
		if expenses[i].ID == "" {
			return fmt.Errorf("expense ID is required")
		}
		if err := expenses[i].Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expenses (id, date, vendor, amount, currency, category, description, submitted_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			vendor = excluded.vendor,
			amount = excluded.amount,
			currency = excluded.currency,
			category = excluded.category,
			description = excluded.description,
			submitted_by = excluded.submitted_by
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range expenses {
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.Date.Format(time.RFC3339),
			e.Vendor,
			e.Amount,
			e.Currency,
			string(e.Category),
			e.Description,
			e.SubmittedBy,
		); err != nil {
			return fmt.Errorf("failed to upsert expense %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetExpense returns the expense with the given ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, vendor, amount, currency, category, description, submitted_by
		FROM expenses WHERE id = ?
	`, id)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes the expense with the given ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// ListExpenses returns all expenses in insertion order.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, vendor, amount, currency, category, description, submitted_by
		FROM expenses ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	return expenses, rows.Err()
}

// ListExpensePage returns one page of expenses. Pages are 1-based; a
// non-positive limit defaults to 50.
func (s *SQLiteStore) ListExpensePage(ctx context.Context, page, limit int) (*service.ExpensePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses").Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count expenses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, vendor, amount, currency, category, description, submitted_by
		FROM expenses ORDER BY rowid LIMIT ? OFFSET ?
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	expenses := make([]model.Expense, 0, limit)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &service.ExpensePage{Expenses: expenses, Total: total}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	var e model.Expense
	var date, category string
	if err := row.Scan(&e.ID, &date, &e.Vendor, &e.Amount, &e.Currency, &category, &e.Description, &e.SubmittedBy); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date for expense %s: %w", e.ID, err)
	}
	e.Date = parsed
	e.Category = model.Category(category)
	return &e, nil
}
