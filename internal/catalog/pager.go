package catalog

import (
	"strings"
	"time"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/musicals"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ListRequest is one page request from a caller.
type ListRequest struct {
	Limit             int
	Cursor            string
	IncludeUnreleased bool
	SearchText        string
	ReleaseDateFrom   *time.Time
	ReleaseDateTo     *time.Time
}

// Page is one slice of the catalog. NextCursor is empty on the last page.
type Page struct {
	Musicals   []musicals.Musical `json:"musicals"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// Normalize applies defaults and checks bounds.
func (r ListRequest) Normalize() (ListRequest, error) {
	fields := map[string]string{}

	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		fields["limit"] = "must be between 1 and 100"
	}
	r.Cursor = strings.TrimSpace(r.Cursor)
	r.SearchText = strings.TrimSpace(r.SearchText)
	if r.ReleaseDateFrom != nil && r.ReleaseDateTo != nil && r.ReleaseDateFrom.After(*r.ReleaseDateTo) {
		fields["releaseDateFrom"] = "must not be after releaseDateTo"
	}

	if len(fields) > 0 {
		return r, apperr.Validation("invalid list request", fields)
	}
	return r, nil
}

// buildQuery turns a normalized request into the storage predicate. It
// fetches one row more than the limit so the caller can tell whether
// another page exists without a second query.
func buildQuery(r ListRequest, now time.Time, after *Position) Query {
	q := Query{
		ReleasedFrom: r.ReleaseDateFrom,
		ReleasedTo:   r.ReleaseDateTo,
		Search:       r.SearchText,
		After:        after,
		Limit:        r.Limit + 1,
	}
	if !r.IncludeUnreleased {
		q.ReleasedBy = &now
	}
	return q
}

// paginate trims the over-fetched row and derives the next cursor from the
// last row kept.
func paginate(rows []musicals.Musical, limit int) Page {
	if len(rows) <= limit {
		return Page{Musicals: nonNil(rows)}
	}
	rows = rows[:limit]
	return Page{Musicals: rows, NextCursor: rows[len(rows)-1].ID}
}

func nonNil(rows []musicals.Musical) []musicals.Musical {
	if rows == nil {
		return []musicals.Musical{}
	}
	return rows
}
