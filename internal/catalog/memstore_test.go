package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/musicals"
)

// memStore is an in-memory Store that counts calls.
type memStore struct {
	mu   sync.Mutex
	rows map[string]musicals.Musical

	calls   map[string]int
	queries []Query
	failAll error
	// vanishOnWrite drops the row right before Update/Delete run,
	// simulating a concurrent delete.
	vanishOnWrite bool
}

func newMemStore(rows ...musicals.Musical) *memStore {
	s := &memStore{rows: map[string]musicals.Musical{}, calls: map[string]int{}}
	for _, m := range rows {
		s.rows[m.ID] = m
	}
	return s
}

func (s *memStore) total() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *memStore) Find(_ context.Context, id string) (*musicals.Musical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Find"]++
	if s.failAll != nil {
		return nil, s.failAll
	}
	m, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("Musical not found")
	}
	return &m, nil
}

func (s *memStore) FindMany(_ context.Context, q Query) ([]musicals.Musical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FindMany"]++
	s.queries = append(s.queries, q)
	if s.failAll != nil {
		return nil, s.failAll
	}

	var out []musicals.Musical
	for _, m := range s.rows {
		if q.ReleasedBy != nil && m.ReleaseDate.After(*q.ReleasedBy) {
			continue
		}
		if q.ReleasedFrom != nil && m.ReleaseDate.Before(*q.ReleasedFrom) {
			continue
		}
		if q.ReleasedTo != nil && m.ReleaseDate.After(*q.ReleasedTo) {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(m.Title), needle) &&
				!strings.Contains(strings.ToLower(m.Description), needle) {
				continue
			}
		}
		if q.After != nil && !before(q.After, m) {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReleaseDate.Equal(out[j].ReleaseDate) {
			return out[i].ReleaseDate.After(out[j].ReleaseDate)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// before reports whether m sorts strictly after p in descending order.
func before(p *Position, m musicals.Musical) bool {
	if m.ReleaseDate.Before(p.ReleaseDate) {
		return true
	}
	return m.ReleaseDate.Equal(p.ReleaseDate) && m.ID < p.ID
}

func (s *memStore) Create(_ context.Context, m *musicals.Musical) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Create"]++
	if s.failAll != nil {
		return s.failAll
	}
	if m.ID == "" {
		m.ID = "generated-id"
	}
	s.rows[m.ID] = *m
	return nil
}

func (s *memStore) Update(_ context.Context, id string, patch musicals.Patch) (*musicals.Musical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Update"]++
	if s.vanishOnWrite {
		delete(s.rows, id)
	}
	m, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("Musical not found")
	}
	patch.Apply(&m)
	s.rows[id] = m
	return &m, nil
}

func (s *memStore) Delete(_ context.Context, id string) (*musicals.Musical, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Delete"]++
	if s.vanishOnWrite {
		delete(s.rows, id)
	}
	m, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("Musical not found")
	}
	delete(s.rows, id)
	return &m, nil
}

var errDB = errors.New("connection reset by peer")
