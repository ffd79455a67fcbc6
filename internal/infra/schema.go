package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS device_storage (
        namespace  TEXT NOT NULL,
        key        TEXT NOT NULL,
        value      BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (namespace, key)
    )`,
	`CREATE TABLE IF NOT EXISTS accounts (
        id          UUID PRIMARY KEY,
        mobile      TEXT NOT NULL UNIQUE,
        name        TEXT NOT NULL DEFAULT '',
        dob         TEXT NOT NULL DEFAULT '',
        address     TEXT NOT NULL DEFAULT '',
        aadhar_url  TEXT NOT NULL DEFAULT '',
        pan_url     TEXT NOT NULL DEFAULT '',
        selfie_url  TEXT NOT NULL DEFAULT '',
        mpin_hash   BYTEA NOT NULL,
        fingerprint BOOLEAN NOT NULL DEFAULT FALSE,
        created_at  TIMESTAMPTZ NOT NULL,
        last_login  TIMESTAMPTZ
    )`,
}

// Migrate creates the tables used by the Postgres storage backend and the
// account repository. Every statement is idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
