package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Table definitions per dialect.  Items reference their report with
// ON DELETE CASCADE; the report repository also deletes items explicitly
// so the invariant holds even where the engine ignores foreign keys.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS samples (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		line_name    VARCHAR(50)  NOT NULL,
		product_name VARCHAR(100) NULL,
		timestamp    DATETIME(6)  NOT NULL,
		metric_a     DOUBLE       NULL,
		metric_b     DOUBLE       NULL,
		operator     VARCHAR(50)  NULL,
		INDEX idx_samples_line_name (line_name),
		INDEX idx_samples_timestamp (timestamp)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS wastewater_reports (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		report_date DATE         NOT NULL,
		vendor      VARCHAR(100) COLLATE utf8mb4_bin NOT NULL,
		status      VARCHAR(50)  NOT NULL DEFAULT 'compliant'
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS wastewater_report_items (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		report_id    BIGINT UNSIGNED NOT NULL,
		item_name    VARCHAR(100) NOT NULL,
		value        DOUBLE       NOT NULL,
		unit         VARCHAR(20)  NULL,
		standard     VARCHAR(100) NULL,
		is_compliant BOOLEAN      NOT NULL DEFAULT TRUE,
		CONSTRAINT fk_items_report FOREIGN KEY (report_id)
			REFERENCES wastewater_reports (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(80)  NOT NULL UNIQUE,
		email         VARCHAR(120) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS samples (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		line_name    VARCHAR(50)  NOT NULL,
		product_name VARCHAR(100),
		timestamp    DATETIME     NOT NULL,
		metric_a     REAL,
		metric_b     REAL,
		operator     VARCHAR(50)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_line_name ON samples (line_name)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_timestamp ON samples (timestamp)`,
	`CREATE TABLE IF NOT EXISTS wastewater_reports (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		report_date DATE         NOT NULL,
		vendor      VARCHAR(100) NOT NULL,
		status      VARCHAR(50)  NOT NULL DEFAULT 'compliant'
	)`,
	`CREATE TABLE IF NOT EXISTS wastewater_report_items (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id    INTEGER      NOT NULL REFERENCES wastewater_reports (id) ON DELETE CASCADE,
		item_name    VARCHAR(100) NOT NULL,
		value        REAL         NOT NULL,
		unit         VARCHAR(20),
		standard     VARCHAR(100),
		is_compliant BOOLEAN      NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      VARCHAR(80)  NOT NULL UNIQUE,
		email         VARCHAR(120) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL
	)`,
}

// EnsureSchema creates any missing tables for the given driver.  Existing
// tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
