package commands

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/db"
	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/query"
)

// openDatabase opens and migrates the database. The --db-path flag wins
// over database.path from config.
func openDatabase(cmd *cobra.Command) (*sql.DB, string, error) {
	dbPath, _ := cmd.Flags().GetString("db-path")
	if dbPath == "" {
		cfg, err := am.Load()
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.GetDatabasePath()
	}

	database, err := db.OpenWithMigrations(dbPath, logger.ComponentLogger("db"))
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, dbPath, nil
}

// openStore opens the fact store. The caller closes the returned database.
func openStore(cmd *cobra.Command) (*storage.Store, *sql.DB, error) {
	database, _, err := openDatabase(cmd)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewStore(database, logger.ComponentLogger("storage")), database, nil
}

// openService opens the store and wraps it in the query surface configured from am.
func openService(cmd *cobra.Command) (*query.Service, *sql.DB, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}
	store, database, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := query.NewService(store, queryConfig(cfg), logger.ComponentLogger("query"))
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return svc, database, nil
}

func queryConfig(cfg *am.Config) query.Config {
	qc := query.Config{
		SearchLimit:    cfg.Query.SearchLimit,
		MaxSearchLimit: cfg.Query.MaxSearchLimit,
		CacheSize:      cfg.Query.CacheSize,
	}
	if len(cfg.Query.BacklinkExclude) > 0 {
		qc.BacklinkExclude = cfg.Query.BacklinkExclude
	}
	return qc
}
