package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(migrationsDir string) error {
	// Read all migration files
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Filter and sort SQL files
	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	// Execute each migration
	for _, filename := range sqlFiles {
		fmt.Printf("Running migration: %s\n", filename)

		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	fmt.Println("All migrations completed successfully")
	return nil
}

// OpenOutage records the start of an outage. If an open record already
// exists its start is extended backward only (never forward) and updated_at
// is refreshed, so repeated calls for the same ongoing outage are idempotent.
// Returns the id of the open record.
func (db *DB) OpenOutage(startCandidate time.Time) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var existingStart time.Time
	err = tx.QueryRow(`
		SELECT id, start_ts FROM outages
		WHERE end_ts IS NULL
		ORDER BY start_ts DESC
		LIMIT 1
		FOR UPDATE
	`).Scan(&id, &existingStart)

	switch {
	case err == sql.ErrNoRows:
		err = tx.QueryRow(`
			INSERT INTO outages (start_ts, end_ts, created_at, updated_at)
			VALUES ($1, NULL, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			RETURNING id
		`, startCandidate).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert outage: %w", err)
		}

	case err != nil:
		return 0, fmt.Errorf("failed to query open outage: %w", err)

	default:
		if startCandidate.Before(existingStart) {
			_, err = tx.Exec(`
				UPDATE outages
				SET start_ts = $1, updated_at = CURRENT_TIMESTAMP
				WHERE id = $2
			`, startCandidate, id)
		} else {
			_, err = tx.Exec(`
				UPDATE outages
				SET updated_at = CURRENT_TIMESTAMP
				WHERE id = $1
			`, id)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to update open outage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit outage start: %w", err)
	}
	return id, nil
}

// CloseOutage closes the most recent open outage and returns its start so
// the caller can compute downtime. If no open record exists a degenerate
// zero-length record is inserted and nil is returned.
func (db *DB) CloseOutage(endTs time.Time) (*time.Time, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var startTs time.Time
	err = tx.QueryRow(`
		SELECT id, start_ts FROM outages
		WHERE end_ts IS NULL
		ORDER BY start_ts DESC
		LIMIT 1
		FOR UPDATE
	`).Scan(&id, &startTs)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO outages (start_ts, end_ts, created_at, updated_at)
			VALUES ($1, $1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		`, endTs)
		if err != nil {
			return nil, fmt.Errorf("failed to insert degenerate outage: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit outage end: %w", err)
		}
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("failed to query open outage: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE outages
		SET end_ts = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, endTs, id)
	if err != nil {
		return nil, fmt.Errorf("failed to close outage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit outage end: %w", err)
	}
	return &startTs, nil
}

// ActiveOutage returns the current open outage record, or nil when power is
// not believed to be out.
func (db *DB) ActiveOutage() (*OutageRecord, error) {
	var rec OutageRecord
	err := db.QueryRow(`
		SELECT id, start_ts, end_ts, created_at, updated_at
		FROM outages
		WHERE end_ts IS NULL
		ORDER BY start_ts DESC
		LIMIT 1
	`).Scan(&rec.ID, &rec.StartTs, &rec.EndTs, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active outage: %w", err)
	}
	return &rec, nil
}

// UpsertScheduleDay overwrites the stored snapshot for one calendar date.
func (db *DB) UpsertScheduleDay(snapshot *ScheduleSnapshot) error {
	query := `
		INSERT INTO schedules (schedule_date, status, slots_json, outages_json, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (schedule_date) DO UPDATE
		SET status = EXCLUDED.status,
		    slots_json = EXCLUDED.slots_json,
		    outages_json = EXCLUDED.outages_json,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := db.Exec(query, snapshot.ScheduleDate, snapshot.Status, snapshot.SlotsJSON, snapshot.OutagesJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule snapshot: %w", err)
	}
	return nil
}

// GetScheduleDay retrieves the stored snapshot for one calendar date, or nil
// if none was ever persisted.
func (db *DB) GetScheduleDay(date string) (*ScheduleSnapshot, error) {
	var snap ScheduleSnapshot
	err := db.QueryRow(`
		SELECT schedule_date, status, slots_json, outages_json, updated_at
		FROM schedules
		WHERE schedule_date = $1
	`, date).Scan(&snap.ScheduleDate, &snap.Status, &snap.SlotsJSON, &snap.OutagesJSON, &snap.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule snapshot: %w", err)
	}
	return &snap, nil
}
