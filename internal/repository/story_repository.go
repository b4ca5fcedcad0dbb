package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/storyflow/internal/models"
)

type StoryRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Story, error)
	Create(ctx context.Context, tx *sql.Tx, story *models.Story) (int64, error)
	Update(ctx context.Context, tx *sql.Tx, story *models.Story) error
	Remove(ctx context.Context, tx *sql.Tx, id int64) error
}

type storyRepository struct {
	db *sql.DB
	pr PostRepository
}

func NewStoryRepository(db *sql.DB, pr PostRepository) StoryRepository {
	return &storyRepository{db: db, pr: pr}
}

func (r *storyRepository) Create(ctx context.Context, tx *sql.Tx, story *models.Story) (int64, error) {
	query := `
		INSERT INTO stories (name, status, published_at, platform_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, story.Name, story.Status, nullTime(story.PublishedAt), story.PlatformID).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, story.Name, story.Status, nullTime(story.PublishedAt), story.PlatformID).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// FindByID loads the story together with its platform and its posts ordered
// by position. A missing story yields (nil, nil).
func (r *storyRepository) FindByID(ctx context.Context, id int64) (*models.Story, error) {
	query := `
		SELECT s.id, s.name, s.status, s.published_at, s.platform_id, s.created_at, s.updated_at,
			p.id, p.restaurant_id, p.platform_key, p.login, p.password, p.created_at, p.updated_at
		FROM stories s
		JOIN platforms p ON p.id = s.platform_id
		WHERE s.id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var story models.Story
	var platform models.Platform
	var publishedAt sql.NullTime
	err := row.Scan(&story.ID, &story.Name, &story.Status, &publishedAt, &story.PlatformID, &story.CreatedAt, &story.UpdatedAt,
		&platform.ID, &platform.RestaurantID, &platform.Key, &platform.Login, &platform.Password, &platform.CreatedAt, &platform.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		story.PublishedAt = &t
	}
	story.Platform = &platform

	posts, err := r.pr.ListByStoryID(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	story.Posts = posts

	return &story, nil
}

func (r *storyRepository) Update(ctx context.Context, tx *sql.Tx, story *models.Story) error {
	query := `
		UPDATE stories
		SET name = $1,
			status = $2,
			published_at = $3,
			platform_id = $4,
			updated_at = $5
		WHERE id = $6
	`

	var err error
	args := []interface{}{story.Name, story.Status, nullTime(story.PublishedAt), story.PlatformID, time.Now(), story.ID}
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *storyRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM stories WHERE id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
