package musicals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Musical struct {
	ID          string    `gorm:"type:uuid;primaryKey;index:idx_musicals_release_id,priority:2" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PosterURL   string    `gorm:"column:poster_url;not null" json:"posterUrl"`
	ReleaseDate time.Time `gorm:"not null;index:idx_musicals_release_id,priority:1" json:"releaseDate"`
	CreatedBy   string    `gorm:"not null;index" json:"createdBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Musical) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Unreleased reports whether the release date is strictly after now.
// It is evaluated on every read and never stored.
func (m Musical) Unreleased(now time.Time) bool {
	return m.ReleaseDate.After(now)
}
