package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/storyflow/internal/models"
)

type StoryEventRepository interface {
	Create(ctx context.Context, tx *sql.Tx, ev *models.StoryEvent) error
	GetByID(ctx context.Context, id string) (*models.StoryEvent, error)
	ListPending(ctx context.Context, before time.Time, maxAttempts, limit int) ([]*models.StoryEvent, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type storyEventRepository struct {
	db *sql.DB
}

func NewStoryEventRepository(db *sql.DB) StoryEventRepository {
	return &storyEventRepository{db: db}
}

func (r *storyEventRepository) Create(ctx context.Context, tx *sql.Tx, ev *models.StoryEvent) error {
	query := `
		INSERT INTO story_events (id, story_id, operation, snapshot, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	// jsonb column; lib/pq would send []byte as bytea.
	var snapshot interface{}
	if len(ev.Snapshot) > 0 {
		snapshot = string(ev.Snapshot)
	}

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, ev.ID, ev.StoryID, ev.Operation, snapshot, ev.Status)
	} else {
		row = r.db.QueryRowContext(ctx, query, ev.ID, ev.StoryID, ev.Operation, snapshot, ev.Status)
	}
	if err := row.Scan(&ev.CreatedAt); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

const storyEventColumns = `id, story_id, operation, snapshot, status, attempts, last_error, created_at, processed_at`

func scanStoryEvent(scan func(dest ...interface{}) error) (*models.StoryEvent, error) {
	var ev models.StoryEvent
	var snapshot []byte
	var lastError sql.NullString
	var processedAt sql.NullTime

	err := scan(&ev.ID, &ev.StoryID, &ev.Operation, &snapshot, &ev.Status, &ev.Attempts, &lastError, &ev.CreatedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	ev.Snapshot = snapshot
	ev.LastError = lastError.String
	if processedAt.Valid {
		ev.ProcessedAt = &processedAt.Time
	}
	return &ev, nil
}

func (r *storyEventRepository) GetByID(ctx context.Context, id string) (*models.StoryEvent, error) {
	query := `SELECT ` + storyEventColumns + ` FROM story_events WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	ev, err := scanStoryEvent(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return ev, nil
}

// ListPending returns undelivered events created before the given instant,
// oldest first. Failed events are included until they reach maxAttempts.
func (r *storyEventRepository) ListPending(ctx context.Context, before time.Time, maxAttempts, limit int) ([]*models.StoryEvent, error) {
	query := `SELECT ` + storyEventColumns + `
		FROM story_events
		WHERE status IN ($1, $2)
			AND created_at < $3
			AND attempts < $4
		ORDER BY created_at
		LIMIT $5
	`

	rows, err := r.db.QueryContext(ctx, query, models.EventStatusPending, models.EventStatusFailed, before, maxAttempts, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var events []*models.StoryEvent
	for rows.Next() {
		ev, err := scanStoryEvent(rows.Scan)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return events, nil
}

func (r *storyEventRepository) MarkDone(ctx context.Context, id string) error {
	query := `
		UPDATE story_events
		SET status = $1,
			attempts = attempts + 1,
			last_error = NULL,
			processed_at = $2
		WHERE id = $3
	`
	return r.exec(ctx, query, models.EventStatusDone, time.Now(), id)
}

func (r *storyEventRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE story_events
		SET status = $1,
			attempts = attempts + 1,
			last_error = $2,
			processed_at = $3
		WHERE id = $4
	`
	return r.exec(ctx, query, models.EventStatusFailed, reason, time.Now(), id)
}

func (r *storyEventRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected == 0 {
		return errors.New("no rows affected; story event may not exist")
	}
	return nil
}
