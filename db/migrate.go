package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/sym"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

// SchemaVersionKey is the metadata key holding the number of the last applied migration.
const SchemaVersionKey = "schema_version"

// migration is one embedded schema file, numbered by its filename prefix.
type migration struct {
	version  int
	filename string
}

func listMigrations() ([]migration, error) {
	entries, err := migrations.ReadDir("sqlite/migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var out []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		prefix := strings.SplitN(entry.Name(), "_", 2)[0]
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, errors.Wrapf(err, "migration %s has no numeric prefix", entry.Name())
		}
		out = append(out, migration{version: version, filename: entry.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// LatestVersion returns the highest embedded migration number.
func LatestVersion() (int, error) {
	ms, err := listMigrations()
	if err != nil {
		return 0, err
	}
	if len(ms) == 0 {
		return 0, nil
	}
	return ms[len(ms)-1].version, nil
}

// SchemaVersion reads the applied schema version from the metadata table.
// A database that has never been migrated reports 0.
func SchemaVersion(db *sql.DB) (int, error) {
	var tables int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'metadata'").Scan(&tables)
	if err != nil {
		return 0, errors.Wrap(err, "check metadata table")
	}
	if tables == 0 {
		return 0, nil
	}

	var raw string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = ?", SchemaVersionKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read schema version")
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.WithDetailf(errors.Wrap(err, "corrupt schema version"), "value: %q", raw)
	}
	return version, nil
}

// Migrate runs all pending migrations.
// Each migration runs in its own transaction together with the schema_version
// bump, so a failed migration leaves the previous version recorded.
// If logger is provided, logs migration progress; otherwise operates silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	ms, err := listMigrations()
	if err != nil {
		return err
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range ms {
		if m.version <= current {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)",
					"migration", m.filename,
					"version", m.version,
				)
			}
			continue
		}

		sqlBytes, err := migrations.ReadFile(path.Join("sqlite/migrations", m.filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", m.filename)
		}

		if logger != nil {
			logger.Infow("Applying migration",
				"migration", m.filename,
				"version", m.version,
			)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "begin tx for %s", m.filename)
		}

		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "execute %s", m.filename)
		}

		// 001 creates metadata, so the version row can always be written here
		if _, err := tx.Exec(`
			INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			SchemaVersionKey, strconv.Itoa(m.version)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record %s", m.filename)
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit %s", m.filename)
		}
		applied++
	}

	if logger != nil {
		logger.Infow("Migrations complete",
			"symbol", sym.DB,
			"applied", applied,
			"total_migrations", len(ms),
		)
	}

	return nil
}
