package contact

import (
	"context"
)

type Service interface {
	Submit(ctx context.Context, c *Contact) (*Contact, error)
	GetAll(ctx context.Context) ([]Contact, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Submit enforces the schema-level requirement (non-empty email and message)
// at the service boundary so callers see the same error either way.
func (s *service) Submit(ctx context.Context, c *Contact) (*Contact, error) {
	if c.Email == "" || c.Message == "" {
		return nil, ErrInvalidContact
	}
	return s.repo.Create(ctx, c)
}

func (s *service) GetAll(ctx context.Context) ([]Contact, error) {
	return s.repo.GetAll(ctx)
}
