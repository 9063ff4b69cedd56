package studydb

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the study schema database connection. The study keeps its own
// database file; it shares nothing with the survey schema.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the study database under dataDir and runs the
// schema migrations.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "study.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Study database initialized", "path", dbPath)
	return database, nil
}

// NewMemoryDB opens an in-memory study database, used by tests.
func NewMemoryDB() (*DB, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	database := &DB{DB: db}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}

// migrate creates the study schema tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS study (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			vignette_template TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS vignette (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			factor TEXT NOT NULL,
			level TEXT NOT NULL,
			text TEXT NOT NULL,
			UNIQUE (factor, level)
		)`,

		`CREATE TABLE IF NOT EXISTS user (
			uuid TEXT PRIMARY KEY NOT NULL,
			email TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS study_result (
			u_id TEXT PRIMARY KEY NOT NULL REFERENCES user(uuid) ON DELETE CASCADE,
			feedback01 TEXT,
			feedback02 TEXT,
			feedback03 TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS answer_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			short_name TEXT NOT NULL,
			description TEXT NOT NULL,
			most_positive INTEGER NOT NULL,
			most_negative INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS question (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			a_id INTEGER NOT NULL REFERENCES answer_type(id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS question_answer (
			q_id INTEGER NOT NULL REFERENCES question(id) ON DELETE CASCADE,
			s_id TEXT NOT NULL REFERENCES study_result(u_id) ON DELETE SET NULL,
			vignette_id TEXT NOT NULL,
			answer TEXT,
			PRIMARY KEY (q_id, s_id, vignette_id)
		)`,

		`CREATE TABLE IF NOT EXISTS demographics (
			u_id TEXT PRIMARY KEY NOT NULL REFERENCES user(uuid) ON DELETE CASCADE,
			age INTEGER,
			gender TEXT,
			education TEXT,
			zip_code TEXT,
			country TEXT,
			employment_status TEXT,
			avg_current_income TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS personal_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			u_id TEXT NOT NULL REFERENCES user(uuid) ON DELETE CASCADE,
			description TEXT,
			data TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_vignette_factor ON vignette(factor)`,
		`CREATE INDEX IF NOT EXISTS idx_question_answer_result ON question_answer(s_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}
