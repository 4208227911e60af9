package auth

import (
	"context"
	"testing"
	"time"

	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	"github.com/olexh/busline/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUserStore struct {
	nextID  int64
	byEmail map[string]*domain.User
	byID    map[int64]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		nextID:  1,
		byEmail: make(map[string]*domain.User),
		byID:    make(map[int64]*domain.User),
	}
}

func (s *memUserStore) Create(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
	if _, ok := s.byEmail[email]; ok {
		return nil, repository.ErrConflict
	}

	u := &domain.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.byEmail[email] = u
	s.byID[u.ID] = u

	return u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return u, nil
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return u, nil
}

func newTestService(store UserStore) (*Service, *token.Service) {
	tokens := token.NewService("test-secret", time.Hour)
	return New(store, tokens, nil, bcrypt.MinCost), tokens
}

func TestRegister(t *testing.T) {
	store := newMemUserStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)

	// the stored hash verifies against the original password
	stored := store.byEmail["alice@example.com"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password1")))
	assert.NotEqual(t, "password1", stored.PasswordHash)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestService(newMemUserStore())

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _ := newTestService(newMemUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Mallory", "alice@example.com", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, tokens := newTestService(newMemUserStore())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	tok, u, err := svc.Login(ctx, "alice@example.com", "password1", "")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)

	claims, err := tokens.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(newMemUserStore())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "password1", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(newMemUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "password2", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	svc, _ := newTestService(newMemUserStore())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	u, err := svc.Profile(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Email, u.Email)

	_, err = svc.Profile(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
