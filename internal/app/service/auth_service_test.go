package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskbackend/internal/common"
	"taskbackend/internal/common/security"
	"taskbackend/internal/domain/model"
)

type fakeUserRepo struct {
	createFn         func(ctx context.Context, user *model.User) error
	findByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.findByEmailFn == nil {
		return nil, common.ErrNotFound
	}
	return f.findByEmailFn(ctx, email)
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.findByUsernameFn == nil {
		return nil, common.ErrNotFound
	}
	return f.findByUsernameFn(ctx, username)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if f.findByIDFn == nil {
		return nil, common.ErrNotFound
	}
	return f.findByIDFn(ctx, id)
}

type fakeRevoker struct {
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	f.revoked[tokenID] = ttl
	return nil
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *model.User
	repo := &fakeUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			copied := *user
			created = &copied
			return nil
		},
	}
	svc := NewAuthService(repo, newFakeRevoker())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: "pw123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be persisted")
	}
	if created.HashedPassword == "" || created.HashedPassword == "pw123" {
		t.Error("expected password to be stored hashed")
	}
	if !security.CheckPasswordHash("pw123", created.HashedPassword) {
		t.Error("expected stored hash to verify against the password")
	}
	if resp.User.HashedPassword != "" {
		t.Error("expected hash to be blanked in the response")
	}
	if resp.Token == "" {
		t.Error("expected a token to be issued")
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, newFakeRevoker())

	cases := []RegisterRequest{
		{Username: "", Email: "a@x.com", Password: "pw"},
		{Username: "a", Email: "", Password: "pw"},
		{Username: "a", Email: "a@x.com", Password: ""},
	}
	for _, req := range cases {
		if _, err := svc.Register(context.Background(), req); !errors.Is(err, common.ErrBadRequest) {
			t.Errorf("Register(%+v): expected ErrBadRequest, got %v", req, err)
		}
	}
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, newFakeRevoker())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "not-an-email", Password: "pw123",
	})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegisterPropagatesConflict(t *testing.T) {
	repo := &fakeUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return common.ErrConflict
		},
	}
	svc := NewAuthService(repo, newFakeRevoker())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: "pw123",
	})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	hash, err := security.HashPassword("right-password")
	if err != nil {
		t.Fatal(err)
	}
	known := &model.User{ID: "u1", Username: "alice", Email: "alice@x.com", HashedPassword: hash}

	repo := &fakeUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == known.Email {
				copied := *known
				return &copied, nil
			}
			return nil, common.ErrNotFound
		},
	}
	svc := NewAuthService(repo, newFakeRevoker())

	_, errUnknown := svc.Login(context.Background(), LoginRequest{Identifier: "nobody@x.com", Password: "whatever"})
	_, errWrongPw := svc.Login(context.Background(), LoginRequest{Identifier: "alice@x.com", Password: "wrong"})

	if errUnknown == nil || errWrongPw == nil {
		t.Fatal("expected both logins to fail")
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("expected indistinguishable errors, got %q vs %q", errUnknown, errWrongPw)
	}
	if !errors.Is(errUnknown, common.ErrUnauthorized) || !errors.Is(errWrongPw, common.ErrUnauthorized) {
		t.Error("expected ErrUnauthorized for both failure modes")
	}
}

func TestLoginFallsBackToUsername(t *testing.T) {
	hash, err := security.HashPassword("pw123")
	if err != nil {
		t.Fatal(err)
	}
	repo := &fakeUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: "u1", Username: "alice", Email: "alice@x.com", HashedPassword: hash}, nil
			}
			return nil, common.ErrNotFound
		},
	}
	svc := NewAuthService(repo, newFakeRevoker())

	resp, err := svc.Login(context.Background(), LoginRequest{Identifier: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.ID != "u1" {
		t.Errorf("expected user u1, got %q", resp.User.ID)
	}
	if resp.User.HashedPassword != "" {
		t.Error("expected hash to be blanked in the response")
	}
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	revoker := newFakeRevoker()
	svc := NewAuthService(&fakeUserRepo{}, revoker)

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := revoker.revoked["jti-1"]; !ok {
		t.Fatal("expected token to be revoked")
	}
	// Second logout of the same token must also succeed.
	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("expected idempotent logout, got %v", err)
	}
}
