package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/dynamic-activities/internal/domain/journal"
	"github.com/rpggio/dynamic-activities/internal/repository"
)

// JournalRepository implements journal.Repository for SQLite
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Log inserts a new lifecycle event
func (r *JournalRepository) Log(ctx context.Context, event *journal.Event) error {
	if event == nil {
		return repository.ErrInvalidInput
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO lifecycle_events (
			activity_id, operation, event_type, code, summary, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullString(event.ActivityID),
		event.Operation,
		event.EventType,
		nullString(event.Code),
		event.Summary,
		nullString(event.Details),
		createdAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "CHECK constraint failed") {
			return fmt.Errorf("failed to log event: %w", repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to log event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		event.ID = id
	}
	event.CreatedAt = createdAt

	return nil
}

// List returns lifecycle events matching the given filters, newest first
func (r *JournalRepository) List(ctx context.Context, opts journal.ListOptions) ([]journal.Event, error) {
	query := `
		SELECT
			id, activity_id, operation, event_type, code, summary, details, created_at
		FROM lifecycle_events
	`

	args := []any{}
	conditions := []string{}

	if opts.ActivityID != nil {
		conditions = append(conditions, "activity_id = ?")
		args = append(args, *opts.ActivityID)
	}
	if opts.EventType != nil {
		conditions = append(conditions, "event_type = ?")
		args = append(args, *opts.EventType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var event journal.Event
		var activityID, code, details sql.NullString
		if err := rows.Scan(
			&event.ID,
			&activityID,
			&event.Operation,
			&event.EventType,
			&code,
			&event.Summary,
			&details,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.ActivityID = activityID.String
		event.Code = code.String
		event.Details = details.String
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
