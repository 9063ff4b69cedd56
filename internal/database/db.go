package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the survey schema database connection with pooling and a cache of
// prepared statements for the hot read paths.
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewDB opens (or creates) the survey database under dataDir and runs the
// schema migrations.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "survey.db")
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

	database := &DB{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Survey database initialized", "path", dbPath)
	return database, nil
}

// NewMemoryDB opens an in-memory survey database, used by tests.
func NewMemoryDB() (*DB, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	database := &DB{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}
	return database, nil
}

// migrate creates the survey schema tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS delivery_model (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS incentive_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS employee_model (
			respondent_id TEXT PRIMARY KEY NOT NULL,
			d_id INTEGER REFERENCES delivery_model(id) ON DELETE SET NULL,
			i_id INTEGER REFERENCES incentive_type(id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS employee_incentive (
			respondent_id TEXT NOT NULL REFERENCES employee_model(respondent_id) ON DELETE CASCADE,
			i_id INTEGER REFERENCES incentive_type(id) ON DELETE SET NULL,
			granted_at INTEGER NOT NULL,
			PRIMARY KEY (respondent_id, i_id, granted_at)
		)`,

		`CREATE TABLE IF NOT EXISTS survey (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS answer_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			short_name TEXT NOT NULL,
			description TEXT NOT NULL,
			most_positive INTEGER NOT NULL,
			most_negative INTEGER NOT NULL
		)`,

		// Exactly one of d_id and i_id may be set; a factor routes a
		// question's score to a single configuration category.
		`CREATE TABLE IF NOT EXISTS factor (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			d_id INTEGER REFERENCES delivery_model(id) ON DELETE SET NULL,
			i_id INTEGER REFERENCES incentive_type(id) ON DELETE SET NULL,
			CHECK ((d_id IS NULL) <> (i_id IS NULL))
		)`,

		`CREATE TABLE IF NOT EXISTS question (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			weight INTEGER NOT NULL,
			f_id INTEGER REFERENCES factor(id) ON DELETE SET NULL,
			a_id INTEGER NOT NULL REFERENCES answer_type(id) ON DELETE SET NULL
		)`,

		`CREATE TABLE IF NOT EXISTS survey_question (
			s_id INTEGER NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
			q_id INTEGER NOT NULL REFERENCES question(id) ON DELETE CASCADE,
			PRIMARY KEY (s_id, q_id)
		)`,

		// respondent_id carries no foreign key: participation is recorded
		// before any employee_model row exists.
		`CREATE TABLE IF NOT EXISTS survey_employee (
			respondent_id TEXT NOT NULL,
			s_id INTEGER NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
			PRIMARY KEY (respondent_id, s_id)
		)`,

		`CREATE TABLE IF NOT EXISTS question_answer (
			s_id INTEGER NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
			q_id INTEGER NOT NULL REFERENCES question(id) ON DELETE CASCADE,
			respondent_id TEXT NOT NULL,
			answer TEXT,
			PRIMARY KEY (s_id, q_id, respondent_id)
		)`,

		`CREATE TABLE IF NOT EXISTS admin (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_question_answer_respondent ON question_answer(respondent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_question_factor ON question(f_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"get_answered_questions": `
			SELECT q.id, q.question, q.weight,
				a.id, a.short_name, a.description, a.most_negative, a.most_positive,
				f.id, f.name, f.d_id, f.i_id,
				qa.answer
			FROM question_answer qa
			JOIN question q ON q.id = qa.q_id
			JOIN answer_type a ON a.id = q.a_id
			LEFT JOIN factor f ON f.id = q.f_id
			WHERE qa.respondent_id = ?`,

		"get_employee_model": `
			SELECT em.respondent_id, em.d_id, em.i_id,
				COALESCE(dm.name, ''), COALESCE(it.name, '')
			FROM employee_model em
			LEFT JOIN delivery_model dm ON dm.id = em.d_id
			LEFT JOIN incentive_type it ON it.id = em.i_id
			WHERE em.respondent_id = ?`,

		"insert_question_answer": `
			INSERT INTO question_answer (s_id, q_id, respondent_id, answer)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(s_id, q_id, respondent_id) DO UPDATE SET answer = excluded.answer`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}
	return nil
}

// getPreparedStatement retrieves a prepared statement by name
func (db *DB) getPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// Close closes the prepared statements and the database connection.
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
