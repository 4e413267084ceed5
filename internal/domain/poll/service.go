package poll

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("poll not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Poll, options []Option) (int64, error) {
	if p.Title == "" {
		return 0, errors.New("title required")
	}
	if len(options) < 2 {
		return 0, errors.New("poll must have at least 2 options")
	}
	return s.repo.Create(ctx, p, options)
}

func (s *Service) Get(ctx context.Context, id int64) (*Poll, []Option, error) {
	return s.repo.GetByID(ctx, id)
}
