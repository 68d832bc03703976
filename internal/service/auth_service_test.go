package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/lib/token"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]model.User
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("repository.postgres.user.CreateUser: %w", postgres.ErrUserExists)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byEmail[user.Email] = *user
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return model.User{}, r.err
	}
	u, ok := r.byEmail[email]
	if !ok {
		return model.User{}, postgres.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, postgres.ErrUserNotFound
}

func newAuthFixture() (*AuthService, *fakeUserRepo, *token.Manager) {
	repo := newFakeUserRepo()
	tokens := token.NewManager("secret", time.Minute, time.Hour)
	svc := NewAuthService(repo, tokens, logger.Discard())
	svc.cost = bcrypt.MinCost
	return svc, repo, tokens
}

func signUp(t *testing.T, svc *AuthService) model.User {
	t.Helper()
	user, err := svc.SignUp(context.Background(), model.SignUpRequest{
		Name:     "Bruno",
		Email:    " Bruno@Example.com ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_SignUpHashesPassword(t *testing.T) {
	svc, repo, _ := newAuthFixture()

	user := signUp(t, svc)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "bruno@example.com", user.Email)
	stored := repo.byEmail["bruno@example.com"]
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestAuthService_SignUpDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	signUp(t, svc)

	_, err := svc.SignUp(context.Background(), model.SignUpRequest{
		Name: "Other", Email: "bruno@example.com", Password: "another password",
	})
	assert.ErrorIs(t, err, postgres.ErrUserExists)
}

func TestAuthService_SignUpValidation(t *testing.T) {
	svc, repo, _ := newAuthFixture()

	cases := []model.SignUpRequest{
		{Name: "", Email: "a@b.c", Password: "longenough"},
		{Name: "A", Email: "not-an-email", Password: "longenough"},
		{Name: "A", Email: "a@b.c", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.SignUp(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, repo.byEmail)
}

func TestAuthService_SignIn(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	user := signUp(t, svc)

	pair, err := svc.SignIn(context.Background(), model.SignInRequest{Email: "BRUNO@example.com", Password: "correct horse"})
	require.NoError(t, err)

	id, err := tokens.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestAuthService_SignInBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture()
	signUp(t, svc)

	_, err := svc.SignIn(context.Background(), model.SignInRequest{Email: "bruno@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(context.Background(), model.SignInRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SignInRepositoryFailure(t *testing.T) {
	svc, repo, _ := newAuthFixture()
	repo.err = errors.New("connection refused")

	_, err := svc.SignIn(context.Background(), model.SignInRequest{Email: "bruno@example.com", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	user := signUp(t, svc)

	pair, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), model.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	id, err := tokens.ParseRefresh(next.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = svc.Refresh(context.Background(), model.RefreshRequest{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestAuthService_RefreshForDeletedUser(t *testing.T) {
	svc, _, tokens := newAuthFixture()

	pair, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), model.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newAuthFixture()
	user := signUp(t, svc)

	got, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrUserNotFound)
}
