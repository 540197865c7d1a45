package kv

import (
	"context"
	"fmt"

	"detailgen/internal/domain"
	"detailgen/internal/infra"
	"detailgen/internal/sqlinline"
)

// Postgres stores documents in the app_kv table.
type Postgres struct {
	sql infra.SQLExecutor
}

func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql}
}

// EnsureSchema creates the backing table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QCreateKVTable); err != nil {
		return fmt.Errorf("kv: create table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := p.sql.QueryRow(ctx, sqlinline.QSelectKV, key).Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QUpsertKV, key, string(value)); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QDeleteKV, key); err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.sql.Query(ctx, sqlinline.QListKVKeys, prefix)
	if err != nil {
		return nil, fmt.Errorf("kv: list keys: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("kv: scan key: %w", err)
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv: list keys: %w", err)
	}
	return out, nil
}

var _ Store = (*Postgres)(nil)
