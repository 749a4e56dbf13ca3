// Package catalog exposes the musical catalogue operations: listing with
// visibility filtering and cursor pagination, and the single-entry
// read/write gate. Authorization is delegated to access.Policy and all I/O
// to a Store.
//
// Cursor pagination is not isolation-safe: a musical inserted or deleted
// ahead of the cursor between two page requests can shift the sequence. This
// is accepted for catalogue metadata.
package catalog

import (
	"context"

	"musical-catalog/internal/domain/access"
	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/musicals"
	"musical-catalog/internal/domain/users"
	"musical-catalog/internal/logging"
)

type Service struct {
	store  Store
	policy access.Policy
	log    logging.Logger
}

func NewService(store Store, policy access.Policy, log logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{store: store, policy: policy, log: log.With("component", "catalog")}
}

// List returns one page of musicals visible to id.
func (s *Service) List(ctx context.Context, req ListRequest, id *users.Identity) (Page, error) {
	req, err := req.Normalize()
	if err != nil {
		return Page{}, err
	}

	if req.IncludeUnreleased {
		if err := s.policy.AuthorizeListUnreleased(id); err != nil {
			return Page{}, err
		}
	}

	var after *Position
	if req.Cursor != "" {
		m, err := s.store.Find(ctx, req.Cursor)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return Page{}, apperr.Validation("invalid list request", map[string]string{
					"cursor": "does not reference a musical",
				})
			}
			return Page{}, err
		}
		after = &Position{ReleaseDate: m.ReleaseDate, ID: m.ID}
	}

	rows, err := s.store.FindMany(ctx, buildQuery(req, s.policy.Now(), after))
	if err != nil {
		return Page{}, err
	}
	return paginate(rows, req.Limit), nil
}

// Get returns a single musical if id may see it.
func (s *Service) Get(ctx context.Context, musicalID string, id *users.Identity) (*musicals.Musical, error) {
	m, err := s.store.Find(ctx, musicalID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeRead(id, *m, s.policy.Now()); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, in musicals.Input, id *users.Identity) (*musicals.Musical, error) {
	if err := s.policy.AuthorizeWrite(id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "creating musical", "user_id", id.ID, "title", in.Title)

	m := in.Musical(id.ID)
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update applies a partial patch. A musical deleted between the lookup and
// the write surfaces as NotFound from the store.
func (s *Service) Update(ctx context.Context, musicalID string, patch musicals.Patch, id *users.Identity) (*musicals.Musical, error) {
	if err := s.policy.AuthorizeWrite(id); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.Find(ctx, musicalID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return existing, nil
	}

	s.log.Info(ctx, "updating musical", "user_id", id.ID, "musical_id", existing.ID, "title", existing.Title)

	return s.store.Update(ctx, existing.ID, patch)
}

func (s *Service) Delete(ctx context.Context, musicalID string, id *users.Identity) (*musicals.Musical, error) {
	if err := s.policy.AuthorizeWrite(id); err != nil {
		return nil, err
	}

	existing, err := s.store.Find(ctx, musicalID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "deleting musical", "user_id", id.ID, "musical_id", existing.ID, "title", existing.Title)

	return s.store.Delete(ctx, existing.ID)
}
