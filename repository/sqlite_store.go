package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"loan-widget/domain"
)

// SQLiteStore is a file-backed KeyValueStore. The same database also holds the
// calculation history, see History.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS kv_records (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS loan_calculations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			amount REAL NOT NULL,
			annual_rate_percent REAL NOT NULL,
			term_years INTEGER NOT NULL,
			monthly_payment REAL NOT NULL,
			total_payment REAL NOT NULL,
			total_interest REAL NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS loan_calculations_created_idx ON loan_calculations(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", &domain.OpError{Op: "sqlite.get", Kind: domain.KindStorage, Key: key, Err: err}
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &domain.OpError{Op: "sqlite.set", Kind: domain.KindStorage, Key: key, Err: err}
	}
	return nil
}

// History returns a LoanRepository backed by the same database.
func (s *SQLiteStore) History() *SQLiteLoanRepository {
	return &SQLiteLoanRepository{db: s.db}
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SQLiteLoanRepository stores calculations in the loan_calculations table.
type SQLiteLoanRepository struct {
	db *sql.DB
}

func (r *SQLiteLoanRepository) Save(ctx context.Context, calc domain.Calculation) error {
	createdAt := calc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loan_calculations (
			amount, annual_rate_percent, term_years,
			monthly_payment, total_payment, total_interest, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		calc.Input.Amount,
		calc.Input.AnnualRatePercent,
		calc.Input.TermYears,
		calc.Result.MonthlyPayment,
		calc.Result.TotalPayment,
		calc.Result.TotalInterest,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &domain.OpError{Op: "sqlite.history.save", Kind: domain.KindStorage, Err: err}
	}
	return nil
}

func (r *SQLiteLoanRepository) List(ctx context.Context, limit int) ([]domain.Calculation, error) {
	query := `
		SELECT id, amount, annual_rate_percent, term_years,
			monthly_payment, total_payment, total_interest, created_at
		FROM loan_calculations
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.OpError{Op: "sqlite.history.list", Kind: domain.KindStorage, Err: err}
	}
	defer rows.Close()

	var out []domain.Calculation
	for rows.Next() {
		var (
			calc      domain.Calculation
			createdAt string
		)
		if err := rows.Scan(
			&calc.ID,
			&calc.Input.Amount,
			&calc.Input.AnnualRatePercent,
			&calc.Input.TermYears,
			&calc.Result.MonthlyPayment,
			&calc.Result.TotalPayment,
			&calc.Result.TotalInterest,
			&createdAt,
		); err != nil {
			return nil, &domain.OpError{Op: "sqlite.history.scan", Kind: domain.KindStorage, Err: err}
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			calc.CreatedAt = ts
		}
		out = append(out, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.OpError{Op: "sqlite.history.list", Kind: domain.KindStorage, Err: err}
	}
	return out, nil
}
