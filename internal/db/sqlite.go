package db

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brand-guardian/backend/internal/auth"
	"github.com/brand-guardian/backend/internal/db/models"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		video_url TEXT NOT NULL,
		params TEXT NOT NULL,
		result TEXT,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS audits (
		session_id TEXT PRIMARY KEY,
		video_url TEXT NOT NULL,
		video_id TEXT NOT NULL,
		status TEXT NOT NULL,
		report TEXT NOT NULL DEFAULT '',
		results TEXT NOT NULL DEFAULT '[]',
		errors TEXT NOT NULL DEFAULT '[]',
		transcript_chars INTEGER NOT NULL DEFAULT 0,
		ocr_lines INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

func (d *Database) EnsureAdmin(username, password string) error {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		"INSERT INTO users (username, password, role) VALUES (?, ?, 'admin')",
		username, hash,
	)
	return err
}

func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *Database) GetUserByID(id int64) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetSetting returns a setting value by key, or defaultVal if not found
func (d *Database) GetSetting(key, defaultVal string) string {
	var val string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	if err != nil {
		return defaultVal
	}
	return val
}

// SetSetting upserts a setting
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP`,
		key, value, value,
	)
	return err
}

// GetAllSettings returns all settings as a map
func (d *Database) GetAllSettings() (map[string]string, error) {
	rows, err := d.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

// SaveAudit upserts a finished audit snapshot.
func (d *Database) SaveAudit(rec *models.AuditRecord) error {
	results := rec.Results
	if results == nil {
		results = json.RawMessage("[]")
	}
	errs := rec.Errors
	if errs == nil {
		errs = json.RawMessage("[]")
	}
	_, err := d.db.Exec(`
		INSERT INTO audits (session_id, video_url, video_id, status, report, results, errors, transcript_chars, ocr_lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status=excluded.status, report=excluded.report, results=excluded.results,
			errors=excluded.errors, transcript_chars=excluded.transcript_chars, ocr_lines=excluded.ocr_lines`,
		rec.SessionID, rec.VideoURL, rec.VideoID, rec.Status, rec.Report,
		string(results), string(errs), rec.TranscriptChars, rec.OCRLines,
	)
	return err
}

// GetAudit returns one stored audit by session id.
func (d *Database) GetAudit(sessionID string) (*models.AuditRecord, error) {
	rec := &models.AuditRecord{}
	var results, errs string
	err := d.db.QueryRow(`
		SELECT session_id, video_url, video_id, status, report, results, errors, transcript_chars, ocr_lines, created_at
		FROM audits WHERE session_id = ?`, sessionID,
	).Scan(&rec.SessionID, &rec.VideoURL, &rec.VideoID, &rec.Status, &rec.Report,
		&results, &errs, &rec.TranscriptChars, &rec.OCRLines, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Results = json.RawMessage(results)
	rec.Errors = json.RawMessage(errs)
	return rec, nil
}

// ListAudits returns stored audits, newest first.
func (d *Database) ListAudits() ([]*models.AuditRecord, error) {
	rows, err := d.db.Query(`
		SELECT session_id, video_url, video_id, status, report, results, errors, transcript_chars, ocr_lines, created_at
		FROM audits ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AuditRecord
	for rows.Next() {
		rec := &models.AuditRecord{}
		var results, errs string
		if err := rows.Scan(&rec.SessionID, &rec.VideoURL, &rec.VideoID, &rec.Status, &rec.Report,
			&results, &errs, &rec.TranscriptChars, &rec.OCRLines, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Results = json.RawMessage(results)
		rec.Errors = json.RawMessage(errs)
		records = append(records, rec)
	}
	return records, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for use by other packages (e.g., job queue)
func (d *Database) DB() *sql.DB {
	return d.db
}
