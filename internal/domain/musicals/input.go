package musicals

import (
	"time"

	"musical-catalog/internal/domain/validation"
)

// Input is the payload for creating a musical.
type Input struct {
	Title       string    `json:"title" validate:"required,min=1,max=100"`
	Description string    `json:"description" validate:"required,min=10"`
	PosterURL   string    `json:"posterUrl" validate:"required,url"`
	ReleaseDate time.Time `json:"releaseDate" validate:"required"`
}

func (in Input) Validate() error {
	return validation.Struct(in)
}

// Musical builds the record to persist for a creator.
func (in Input) Musical(createdBy string) *Musical {
	return &Musical{
		Title:       in.Title,
		Description: in.Description,
		PosterURL:   in.PosterURL,
		ReleaseDate: in.ReleaseDate,
		CreatedBy:   createdBy,
	}
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,min=10"`
	PosterURL   *string    `json:"posterUrl,omitempty" validate:"omitempty,url"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
}

func (p Patch) Validate() error {
	return validation.Struct(p)
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.PosterURL == nil && p.ReleaseDate == nil
}

// Columns returns the changed columns keyed by database column name.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.PosterURL != nil {
		cols["poster_url"] = *p.PosterURL
	}
	if p.ReleaseDate != nil {
		cols["release_date"] = *p.ReleaseDate
	}
	return cols
}

// Apply copies the set fields onto m.
func (p Patch) Apply(m *Musical) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.PosterURL != nil {
		m.PosterURL = *p.PosterURL
	}
	if p.ReleaseDate != nil {
		m.ReleaseDate = *p.ReleaseDate
	}
}
