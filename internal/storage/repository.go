package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

const table = "transactions"

// Sync states of a stored transaction.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncFailed  = "error"
)

var ErrNotFound = errors.New("transaction not found")

var columns = []string{"id", "date", "description", "amount", "type", "created_at", "sync_status"}

// StoredTransaction is a transaction as recorded by the collaborator service.
type StoredTransaction struct {
	ID          string
	Transaction core.Transaction
	CreatedAt   time.Time
	SyncStatus  string
}

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := Migrate(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create records tx under id.
func (r *SQLiteRepository) Create(ctx context.Context, id string, tx core.Transaction, createdAt time.Time) error {
	query, args, err := squirrel.Insert(table).
		Columns(columns...).
		Values(id, tx.Date.ISO(), tx.Description, tx.Amount.String(), string(tx.Type),
			createdAt.UTC().Format(time.RFC3339Nano), SyncPending).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// List returns every transaction in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]StoredTransaction, error) {
	return r.query(ctx, squirrel.Select(columns...).From(table).OrderBy("seq ASC"))
}

// GetByID returns the transaction recorded under id, or ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (StoredTransaction, error) {
	rows, err := r.query(ctx, squirrel.Select(columns...).From(table).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return StoredTransaction{}, err
	}
	if len(rows) == 0 {
		return StoredTransaction{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return rows[0], nil
}

// ListPending returns up to limit transactions not yet synced to the sheet,
// oldest first. Rows in the error state are retried.
func (r *SQLiteRepository) ListPending(ctx context.Context, limit int) ([]StoredTransaction, error) {
	q := squirrel.Select(columns...).
		From(table).
		Where(squirrel.NotEq{"sync_status": SyncDone}).
		OrderBy("seq ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.query(ctx, q)
}

// MarkSynced flags id as mirrored to the sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, SyncDone, time.Now().UTC().Format(time.RFC3339Nano))
}

// MarkSyncError flags id as failed; it stays eligible for ListPending.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, SyncFailed, nil)
}

func (r *SQLiteRepository) setStatus(ctx context.Context, id, status string, syncedAt any) error {
	query, args, err := squirrel.Update(table).
		Set("sync_status", status).
		Set("synced_at", syncedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update sync status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, b squirrel.SelectBuilder) ([]StoredTransaction, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []StoredTransaction
	for rows.Next() {
		var (
			st                                   StoredTransaction
			date, description, amount, typ, when string
		)
		if err := rows.Scan(&st.ID, &date, &description, &amount, &typ, &when, &st.SyncStatus); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if st.Transaction, err = decode(date, description, amount, typ); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", st.ID, err)
		}
		if st.CreatedAt, err = time.Parse(time.RFC3339Nano, when); err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", st.ID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func decode(date, description, amount, typ string) (core.Transaction, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{Date: d, Description: description, Amount: amt, Type: core.Type(typ)}, nil
}
