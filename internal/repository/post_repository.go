package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/storyflow/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	ListByStoryID(ctx context.Context, storyID int64) ([]*models.Post, error)
	RemoveByStoryID(ctx context.Context, tx *sql.Tx, storyID int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (story_id, url, converted_url, media_type, position, external_post_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	externalID := sql.NullString{String: post.ExternalPostID, Valid: post.ExternalPostID != ""}

	var id int64
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.StoryID, post.URL, post.ConvertedURL, post.MediaType, post.Position, externalID).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.StoryID, post.URL, post.ConvertedURL, post.MediaType, post.Position, externalID).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) ListByStoryID(ctx context.Context, storyID int64) ([]*models.Post, error) {
	query := `
		SELECT id, story_id, url, converted_url, media_type, position, external_post_id, created_at
		FROM posts
		WHERE story_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var p models.Post
		var externalID sql.NullString
		if err := rows.Scan(&p.ID, &p.StoryID, &p.URL, &p.ConvertedURL, &p.MediaType, &p.Position, &externalID, &p.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		p.ExternalPostID = externalID.String
		posts = append(posts, &p)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) RemoveByStoryID(ctx context.Context, tx *sql.Tx, storyID int64) error {
	query := `DELETE FROM posts WHERE story_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, storyID)
	} else {
		_, err = r.db.ExecContext(ctx, query, storyID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
