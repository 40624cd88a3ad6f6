package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.canceled_reservation"

var steps = []migrationStep{
	{
		Name: "create_table_member",
		SQL: `CREATE TABLE IF NOT EXISTS member (
  id    BIGSERIAL    PRIMARY KEY,
  name  VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  role  VARCHAR(20)  NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN'))
);`,
	},
	{
		Name: "create_table_theme",
		SQL: `CREATE TABLE IF NOT EXISTS theme (
  id          BIGSERIAL    PRIMARY KEY,
  name        VARCHAR(255) NOT NULL UNIQUE,
  description TEXT         NOT NULL DEFAULT '',
  thumbnail   TEXT         NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_reservation_time",
		SQL: `CREATE TABLE IF NOT EXISTS reservation_time (
  id       BIGSERIAL  PRIMARY KEY,
  start_at VARCHAR(5) NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_reservation",
		SQL: `CREATE TABLE IF NOT EXISTS reservation (
  id               BIGSERIAL    PRIMARY KEY,
  date             DATE         NOT NULL,
  time_id          BIGINT       NOT NULL REFERENCES reservation_time (id),
  theme_id         BIGINT       NOT NULL REFERENCES theme (id),
  member_id        BIGINT       NOT NULL REFERENCES member (id),
  status           VARCHAR(20)  NOT NULL CHECK (status IN ('RESERVATION', 'WAITING')),
  payment_order_id VARCHAR(255),
  payment_key      VARCHAR(255),
  payment_amount   BIGINT,
  created_at       TIMESTAMPTZ  NOT NULL DEFAULT now(),
  UNIQUE (date, time_id, theme_id, member_id)
);`,
	},
	{
		Name: "create_index_reservation_active_slot",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_reservation_active_slot
  ON reservation (date, time_id, theme_id) WHERE status = 'RESERVATION';`,
	},
	{
		Name: "create_index_reservation_slot_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reservation_slot_status ON reservation (date, time_id, theme_id, status, id);`,
	},
	{
		Name: "create_index_reservation_member",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reservation_member ON reservation (member_id);`,
	},
	{
		Name: "create_table_canceled_reservation",
		SQL: `CREATE TABLE IF NOT EXISTS canceled_reservation (
  id               BIGSERIAL    PRIMARY KEY,
  reservation_id   BIGINT       NOT NULL,
  date             DATE         NOT NULL,
  time_id          BIGINT       NOT NULL REFERENCES reservation_time (id),
  theme_id         BIGINT       NOT NULL REFERENCES theme (id),
  member_id        BIGINT       NOT NULL REFERENCES member (id),
  status           VARCHAR(20)  NOT NULL,
  payment_order_id VARCHAR(255),
  payment_key      VARCHAR(255),
  payment_amount   BIGINT,
  canceled_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated applies the schema unless the sentinel table already exists.
// Every step is idempotent, so a run interrupted halfway is completed by the next one.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"))

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		log.Info("db_migration_skip", zap.String("reason", "schema already exists"))
		return nil
	}

	log.Info("db_migration_start", zap.Int("steps", len(steps)))
	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration", time.Since(stepStart)),
		)
	}

	log.Info("db_migration_success", zap.Duration("duration", time.Since(start)))
	return nil
}
