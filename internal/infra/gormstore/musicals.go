package gormstore

import (
	"context"
	"errors"
	"strings"

	"musical-catalog/internal/catalog"
	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/musicals"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgMusicalNotFound = "Musical not found"

// Musicals is the PostgreSQL-backed catalog.Store.
type Musicals struct {
	db *gorm.DB
}

func NewMusicals(db *gorm.DB) *Musicals {
	return &Musicals{db: db}
}

var _ catalog.Store = (*Musicals)(nil)

func (s *Musicals) Find(ctx context.Context, id string) (*musicals.Musical, error) {
	// ids are uuids; anything else cannot exist and would make postgres
	// reject the query
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound(msgMusicalNotFound)
	}

	var m musicals.Musical
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgMusicalNotFound)
		}
		return nil, apperr.Internal("load musical", err)
	}
	return &m, nil
}

func (s *Musicals) FindMany(ctx context.Context, q catalog.Query) ([]musicals.Musical, error) {
	tx := s.db.WithContext(ctx).Model(&musicals.Musical{})

	if q.ReleasedBy != nil {
		tx = tx.Where("release_date <= ?", *q.ReleasedBy)
	}
	if q.ReleasedFrom != nil {
		tx = tx.Where("release_date >= ?", *q.ReleasedFrom)
	}
	if q.ReleasedTo != nil {
		tx = tx.Where("release_date <= ?", *q.ReleasedTo)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		tx = tx.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if q.After != nil {
		// keyset: strictly after the cursor in (release_date DESC, id DESC)
		tx = tx.Where("(release_date, id) < (?, ?)", q.After.ReleaseDate, q.After.ID)
	}

	var rows []musicals.Musical
	err := tx.
		Order("release_date DESC").
		Order("id DESC").
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("list musicals", err)
	}
	return rows, nil
}

func (s *Musicals) Create(ctx context.Context, m *musicals.Musical) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.Internal("create musical", err)
	}
	return nil
}

// Update writes the patched columns and returns the stored row. A row that
// vanished after the caller's lookup is reported as NotFound.
func (s *Musicals) Update(ctx context.Context, id string, patch musicals.Patch) (*musicals.Musical, error) {
	var m musicals.Musical
	res := s.db.WithContext(ctx).
		Model(&m).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	if res.Error != nil {
		return nil, apperr.Internal("update musical", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(msgMusicalNotFound)
	}
	return &m, nil
}

func (s *Musicals) Delete(ctx context.Context, id string) (*musicals.Musical, error) {
	var m musicals.Musical
	res := s.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&m)
	if res.Error != nil {
		return nil, apperr.Internal("delete musical", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(msgMusicalNotFound)
	}
	return &m, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
