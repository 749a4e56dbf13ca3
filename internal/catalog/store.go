package catalog

import (
	"context"
	"time"

	"musical-catalog/internal/domain/musicals"
)

// Store is the persistence the catalog needs. Implementations report a
// missing row as an apperr NotFound and any other failure as Internal.
type Store interface {
	Find(ctx context.Context, id string) (*musicals.Musical, error)
	FindMany(ctx context.Context, q Query) ([]musicals.Musical, error)
	Create(ctx context.Context, m *musicals.Musical) error
	Update(ctx context.Context, id string, patch musicals.Patch) (*musicals.Musical, error)
	Delete(ctx context.Context, id string) (*musicals.Musical, error)
}

// Position is a point in the (release_date DESC, id DESC) ordering.
type Position struct {
	ReleaseDate time.Time
	ID          string
}

// Query is the fully resolved predicate for one page fetch. Rows are
// returned ordered by release date descending, then id descending.
type Query struct {
	// ReleasedBy, when set, excludes musicals released after it.
	ReleasedBy *time.Time
	// ReleasedFrom and ReleasedTo are inclusive bounds.
	ReleasedFrom *time.Time
	ReleasedTo   *time.Time
	// Search matches title or description, case-insensitively.
	Search string
	// After, when set, restricts rows to those strictly after it.
	After *Position
	Limit int
}
