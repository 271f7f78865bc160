package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an instance record is not found.
var ErrNotFound = errors.New("instance record not found")

// InstanceRecord is one persisted provisioned-instance row. Name is the
// primary key; all fields are immutable once written.
type InstanceRecord struct {
	Name           string    `db:"name"`
	TenantID       string    `db:"tenant_id"`
	TenantName     string    `db:"tenant_name"`
	AccountMetaKey string    `db:"account_meta_key"`
	CreatedAt      time.Time `db:"created_at"`
}

// InstanceStore provides access to the instances table.
type InstanceStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewInstanceStore creates a store and ensures the backing table exists in
// the given schema.
func NewInstanceStore(ctx context.Context, pool *pgxpool.Pool, schema string) (*InstanceStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if schema == "" {
		return nil, errors.New("schema is required")
	}

	s := &InstanceStore{pool: pool, schema: schema}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *InstanceStore) table() string {
	return pgx.Identifier{s.schema, "instances"}.Sanitize()
}

func (s *InstanceStore) ensureTable(ctx context.Context) error {
	createSchema := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{s.schema}.Sanitize())
	if _, err := s.pool.Exec(ctx, createSchema); err != nil {
		return fmt.Errorf("create instance schema: %w", err)
	}

	createTable := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            name             TEXT PRIMARY KEY,
            tenant_id        TEXT NOT NULL,
            tenant_name      TEXT NOT NULL,
            account_meta_key TEXT NOT NULL,
            created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
        )`, s.table())
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create instances table: %w", err)
	}
	return nil
}

// Put inserts the instance record.
func (s *InstanceStore) Put(ctx context.Context, rec InstanceRecord) (InstanceRecord, error) {
	if rec.Name == "" {
		return InstanceRecord{}, errors.New("instance name is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (name, tenant_id, tenant_name, account_meta_key, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING name, tenant_id, tenant_name, account_meta_key, created_at
    `, s.table())

	row := s.pool.QueryRow(ctx, query,
		rec.Name, rec.TenantID, rec.TenantName, rec.AccountMetaKey, rec.CreatedAt,
	)
	return scanInstanceRecord(row)
}

// Get fetches one record by name.
func (s *InstanceStore) Get(ctx context.Context, name string) (InstanceRecord, error) {
	query := fmt.Sprintf(`
        SELECT name, tenant_id, tenant_name, account_meta_key, created_at
        FROM %s WHERE name = $1
    `, s.table())
	return scanInstanceRecord(s.pool.QueryRow(ctx, query, name))
}

// Delete removes one record by name; deleting an absent record is an error.
func (s *InstanceStore) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE name = $1", s.table())
	tag, err := s.pool.Exec(ctx, query, name)
	if err != nil {
		return fmt.Errorf("delete instance %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every persisted record, oldest first.
func (s *InstanceStore) All(ctx context.Context) ([]InstanceRecord, error) {
	query := fmt.Sprintf(`
        SELECT name, tenant_id, tenant_name, account_meta_key, created_at
        FROM %s ORDER BY created_at
    `, s.table())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var records []InstanceRecord
	for rows.Next() {
		rec, err := scanInstanceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return records, nil
}

func scanInstanceRecord(row pgx.Row) (InstanceRecord, error) {
	var rec InstanceRecord
	if err := row.Scan(&rec.Name, &rec.TenantID, &rec.TenantName, &rec.AccountMetaKey, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InstanceRecord{}, ErrNotFound
		}
		return InstanceRecord{}, err
	}
	return rec, nil
}
