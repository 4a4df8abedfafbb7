package repository

import (
	"context"
	"errors"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/posts"
)

var (
	ErrNotFound = errors.New("post not found")
)

// Repository stores posts.
type Repository interface {
	Create(ctx context.Context, p *posts.Post) error
	Get(ctx context.Context, id string) (*posts.Post, error)
	List(ctx context.Context) ([]*posts.Post, error)
	Update(ctx context.Context, id string, title, content *string) error
	Delete(ctx context.Context, id string) error
}
