package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/auth"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/posts"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/posts/repository"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not the author of this post")
	ErrInvalid   = errors.New("title is required")
)

// Service holds the post business rules: anyone may read, only authors may change their posts.
type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, author *auth.Principal, title, content string) (*posts.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalid
	}
	now := time.Now().UTC()
	p := &posts.Post{
		ID:         uuid.NewString(),
		AuthorID:   author.UserID,
		AuthorName: author.Username,
		Title:      title,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*posts.Post, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]*posts.Post, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, caller *auth.Principal, id string, title, content *string) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return ErrInvalid
	}
	if err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, title, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, caller *auth.Principal, id string) error {
	if err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, caller *auth.Principal, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if caller == nil || p.AuthorID != caller.UserID {
		return ErrForbidden
	}
	return nil
}
