package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const recordColumns = `id, uuid, source_path, filename, media_type, size_bytes, status,
	exif_found, device_make, device_model, device_display,
	scored, likelihood, verdict, rationale,
	error_message, created_at, updated_at`

// NewUpload inserts a pending record for a newly submitted file.
func (s *Store) NewUpload(ctx context.Context, sourcePath, filename, mediaType string, sizeBytes int64) (*Record, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return nil, errors.New("source path is required")
	}
	if strings.TrimSpace(filename) == "" {
		return nil, errors.New("filename is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO analyses (
            uuid, source_path, filename, media_type, size_bytes, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		sourcePath,
		filename,
		strings.ToLower(strings.TrimSpace(mediaType)),
		sizeBytes,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a record by database identifier. A miss returns (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM analyses WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}

// GetByUUID fetches a record by its public identifier. A miss returns (nil, nil).
func (s *Store) GetByUUID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM analyses WHERE uuid = ?`, strings.TrimSpace(id))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis by uuid: %w", err)
	}
	return rec, nil
}

// NextPending returns the oldest pending record, or (nil, nil) when none.
func (s *Store) NextPending(ctx context.Context) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM analyses WHERE status = ? ORDER BY id LIMIT 1`,
		StatusPending,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	return rec, nil
}

// List returns records, newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM analyses`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return records, nil
}

// Update persists changes to an existing record.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	rec.UpdatedAt = time.Now().UTC()

	_, err := s.execWithRetry(
		ctx,
		`UPDATE analyses SET
            source_path = ?, filename = ?, media_type = ?, size_bytes = ?, status = ?,
            exif_found = ?, device_make = ?, device_model = ?, device_display = ?,
            scored = ?, likelihood = ?, verdict = ?, rationale = ?,
            error_message = ?, updated_at = ?
         WHERE id = ?`,
		rec.SourcePath,
		rec.Filename,
		rec.MediaType,
		rec.SizeBytes,
		rec.Status,
		boolToInt(rec.ExifFound),
		rec.DeviceMake,
		rec.DeviceModel,
		rec.DeviceDisplay,
		boolToInt(rec.Scored),
		rec.Likelihood,
		rec.Verdict,
		rec.Rationale,
		rec.ErrorMessage,
		rec.UpdatedAt.Format(time.RFC3339Nano),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	return nil
}

// Clear removes all records and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM analyses`)
	if err != nil {
		return 0, fmt.Errorf("clear analyses: %w", err)
	}
	return res.RowsAffected()
}

// ClearCompleted removes only completed records.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM analyses WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing transitions in-flight records back to pending so an
// interrupted daemon run can retry them.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE analyses SET status = ?, updated_at = ? WHERE status IN (?, ?)`,
		StatusPending,
		timestamp,
		StatusExtracting,
		StatusScoring,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck: %w", err)
	}
	return res.RowsAffected()
}

// Health returns aggregate record counts.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM analyses GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("health query: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending += count
		case StatusExtracting, StatusScoring:
			summary.Processing += count
		case StatusCompleted:
			summary.Completed += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate health rows: %w", err)
	}
	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		exifFound int
		scored    int
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&rec.ID,
		&rec.UUID,
		&rec.SourcePath,
		&rec.Filename,
		&rec.MediaType,
		&rec.SizeBytes,
		&rec.Status,
		&exifFound,
		&rec.DeviceMake,
		&rec.DeviceModel,
		&rec.DeviceDisplay,
		&scored,
		&rec.Likelihood,
		&rec.Verdict,
		&rec.Rationale,
		&rec.ErrorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ExifFound = exifFound != 0
	rec.Scored = scored != 0
	if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &rec, nil
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
