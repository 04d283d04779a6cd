package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the bonding store.
var Migrations = migrate.NewGroup("bonding")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_bonding_accounts",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bonding_accounts (
    holder     TEXT NOT NULL,
    provider   TEXT NOT NULL,
    specifier  TEXT NOT NULL,
    bonded     BIGINT NOT NULL DEFAULT 0 CHECK (bonded >= 0),
    value_held BIGINT NOT NULL DEFAULT 0 CHECK (value_held >= 0),
    escrowed   BIGINT NOT NULL DEFAULT 0 CHECK (escrowed >= 0),
    issued     BIGINT NOT NULL DEFAULT 0 CHECK (issued >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (holder, provider, specifier)
);

CREATE INDEX IF NOT EXISTS idx_bonding_accounts_provider ON bonding_accounts (provider, specifier);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS bonding_accounts`)
				return err
			},
		},
	)
}
