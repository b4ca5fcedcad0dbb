package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/storyflow/internal/models"
)

type PlatformRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Platform, error)
	UpdateCredentials(ctx context.Context, id int64, login, password string) error
}

type platformRepository struct {
	db *sql.DB
}

func NewPlatformRepository(db *sql.DB) PlatformRepository {
	return &platformRepository{db: db}
}

// FindByID returns the platform with its restaurant attached.
func (r *platformRepository) FindByID(ctx context.Context, id int64) (*models.Platform, error) {
	query := `
		SELECT p.id, p.restaurant_id, p.platform_key, p.login, p.password, p.created_at, p.updated_at,
			r.id, r.name, r.organization_id, r.created_at
		FROM platforms p
		JOIN restaurants r ON r.id = p.restaurant_id
		WHERE p.id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.Platform
	var rest models.Restaurant
	err := row.Scan(&p.ID, &p.RestaurantID, &p.Key, &p.Login, &p.Password, &p.CreatedAt, &p.UpdatedAt,
		&rest.ID, &rest.Name, &rest.OrganizationID, &rest.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	p.Restaurant = &rest

	return &p, nil
}

// UpdateCredentials stores the login and the already encrypted password.
func (r *platformRepository) UpdateCredentials(ctx context.Context, id int64, login, password string) error {
	query := `
		UPDATE platforms
		SET login = $1, password = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, login, password, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if rowsAffected == 0 {
		return errors.New("no platform found with the given ID")
	}

	return nil
}
