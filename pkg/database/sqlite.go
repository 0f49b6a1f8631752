package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/limkokwing/registry-sync/pkg/config"
)

// NewSQLite opens the shared local store. The schema is owned elsewhere;
// the sync engine only reads and upserts. Path may be a local file or a
// remote Turso URL carrying its auth token.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.Path
	if !strings.Contains(dsn, "?") {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", cfg.Path, cfg.BusyTimeout.Milliseconds())
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// the store is shared with other tools; keep per-op connections and
	// let the busy timeout absorb contention
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
