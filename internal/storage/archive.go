// Package storage persists summaries of ended sessions so they survive
// process restarts. Live session state stays in memory.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
)

// ErrSummaryNotFound reports a lookup for an unarchived session.
var ErrSummaryNotFound = errors.New("summary not found")

// Archive is a SQLite-backed summary store.
type Archive struct {
	db *sql.DB
}

// NewArchive opens (or creates) the archive database at dbPath.
func NewArchive(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	archive := &Archive{db: db}
	if err := archive.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

func (a *Archive) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := a.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS summaries (
			session_id TEXT PRIMARY KEY,
			doctor_id TEXT NOT NULL,
			patient_name TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			transcript_length INTEGER NOT NULL,
			emotion_alerts INTEGER NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create summaries table: %w", err)
	}

	if _, err := a.db.Exec("CREATE INDEX IF NOT EXISTS idx_summaries_doctor ON summaries(doctor_id, start_time)"); err != nil {
		return fmt.Errorf("create summaries index: %w", err)
	}
	return nil
}

// SaveSummary stores one summary row. Sessions end exactly once, so a
// duplicate insert indicates a bug and surfaces as an error.
func (a *Archive) SaveSummary(ctx context.Context, summary consultmodel.Summary) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO summaries (
			session_id, doctor_id, patient_name, start_time, end_time,
			duration_seconds, total_questions, transcript_length, emotion_alerts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.SessionID,
		summary.DoctorID,
		summary.PatientName,
		summary.StartTime.UTC().Format(time.RFC3339Nano),
		summary.EndTime.UTC().Format(time.RFC3339Nano),
		summary.TotalDuration,
		summary.TotalQuestions,
		summary.TranscriptLength,
		summary.EmotionAlerts,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// Summary loads one archived summary by session id.
func (a *Archive) Summary(ctx context.Context, sessionID string) (consultmodel.Summary, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT session_id, doctor_id, patient_name, start_time, end_time,
			duration_seconds, total_questions, transcript_length, emotion_alerts
		FROM summaries WHERE session_id = ?`, sessionID)

	var summary consultmodel.Summary
	var startRaw, endRaw string
	err := row.Scan(
		&summary.SessionID,
		&summary.DoctorID,
		&summary.PatientName,
		&startRaw,
		&endRaw,
		&summary.TotalDuration,
		&summary.TotalQuestions,
		&summary.TranscriptLength,
		&summary.EmotionAlerts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return consultmodel.Summary{}, ErrSummaryNotFound
	}
	if err != nil {
		return consultmodel.Summary{}, fmt.Errorf("scan summary: %w", err)
	}

	if summary.StartTime, err = time.Parse(time.RFC3339Nano, startRaw); err != nil {
		return consultmodel.Summary{}, fmt.Errorf("parse start time: %w", err)
	}
	if summary.EndTime, err = time.Parse(time.RFC3339Nano, endRaw); err != nil {
		return consultmodel.Summary{}, fmt.Errorf("parse end time: %w", err)
	}
	return summary, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
