package models

import "time"

type Platform struct {
	ID           int64     `db:"id" json:"id"`
	RestaurantID int64     `db:"restaurant_id" json:"restaurant_id"`
	Key          string    `db:"platform_key" json:"platform"`
	Login        string    `db:"login" json:"login"`
	Password     string    `db:"password" json:"-"` // AES-GCM ciphertext
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	Restaurant *Restaurant `json:"restaurant,omitempty"`
}

type Restaurant struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	OrganizationID int64     `db:"organization_id" json:"organization_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Organization *Organization `json:"organization,omitempty"`
}

type Organization struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	PlatformInstagram = "INSTAGRAM"
	PlatformFacebook  = "FACEBOOK"
	PlatformTiktok    = "TIKTOK"
	PlatformTwitter   = "TWITTER"
)
