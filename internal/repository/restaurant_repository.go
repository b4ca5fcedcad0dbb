package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/storyflow/internal/models"
)

type RestaurantRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Restaurant, error)
}

type restaurantRepository struct {
	db *sql.DB
}

func NewRestaurantRepository(db *sql.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) FindByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	query := `
		SELECT r.id, r.name, r.organization_id, r.created_at,
			o.id, o.name, o.created_at
		FROM restaurants r
		JOIN organizations o ON o.id = r.organization_id
		WHERE r.id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var rest models.Restaurant
	var org models.Organization
	err := row.Scan(&rest.ID, &rest.Name, &rest.OrganizationID, &rest.CreatedAt, &org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	rest.Organization = &org

	return &rest, nil
}
