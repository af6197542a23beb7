// Package commands implements the whereabouts CLI subcommands.
package commands

import (
	"database/sql"

	"github.com/teranos/whereabouts/config"
	"github.com/teranos/whereabouts/db"
	"github.com/teranos/whereabouts/logger"
)

// ConfigFile overrides the default config search path when set via the
// --config flag.
var ConfigFile string

func loadConfig() (*config.Config, error) {
	if ConfigFile != "" {
		return config.LoadFromFile(ConfigFile)
	}
	return config.Load()
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, logger.Logger); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
