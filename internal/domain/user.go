package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Handle    string    `gorm:"uniqueIndex;not null;column:handle" json:"handle"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatar_url"`

	// Last known location, used when a feed request carries no coordinates.
	LastLat     *float64 `gorm:"column:last_lat" json:"last_lat,omitempty"`
	LastLon     *float64 `gorm:"column:last_lon" json:"last_lon,omitempty"`
	LastCity    string   `gorm:"column:last_city" json:"last_city,omitempty"`
	LastCountry string   `gorm:"column:last_country" json:"last_country,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// LastKnownLocation returns the user's most recent resolved location, or nil.
func (u *User) LastKnownLocation() *GeoPoint {
	if u == nil || u.LastLat == nil || u.LastLon == nil {
		return nil
	}
	return &GeoPoint{
		Lat:     *u.LastLat,
		Lon:     *u.LastLon,
		City:    u.LastCity,
		Country: u.LastCountry,
	}
}
