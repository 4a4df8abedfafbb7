package users

import (
	"context"
	"errors"
	"testing"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/models"
)

type fakeRepo struct {
	created   *models.User
	createErr error
}

func (f *fakeRepo) FindByLoginIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return nil, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, nil
}

func (f *fakeRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = u
	return nil
}

func TestRegister(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, NewUser{Username: " alice ", Email: "Alice@Example.com", Name: "Alice", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.Username != "alice" || u.Email != "alice@example.com" {
		t.Fatalf("unexpected normalization: %q %q", u.Username, u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "hunter2hunter2" {
		t.Fatalf("password not hashed: %q", u.PasswordHash)
	}
	if !CheckPassword("hunter2hunter2", u.PasswordHash) {
		t.Fatal("stored hash does not verify")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	if repo.created != u || u.ID == "" {
		t.Fatalf("user not stored with an id: %+v", repo.created)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, NewUser{Email: "a@b.c", Password: "longenough"}); err == nil {
		t.Fatal("expected error for missing username")
	}
	if _, err := svc.Register(ctx, NewUser{Username: "bob", Email: "b@b.c", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegister_RepoError(t *testing.T) {
	svc := NewService(&fakeRepo{createErr: ErrDuplicate})
	_, err := svc.Register(context.Background(), NewUser{Username: "bob", Email: "b@b.c", Password: "longenough"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
