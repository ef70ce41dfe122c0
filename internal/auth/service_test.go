package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abasto/abasto/internal/shared"
)

type memoryRepository struct {
	byID   map[string]*User
	logins []string
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{byID: make(map[string]*User)}
}

func (m *memoryRepository) Create(_ context.Context, u *User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	email = strings.ToLower(email)
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepository) RecordLogin(_ context.Context, userID, _ string) error {
	m.logins = append(m.logins, userID)
	return nil
}

func (m *memoryRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	ctx := context.Background()

	u, err := svc.Register(ctx, " Admin@Abasto.VE ", "Admin", "correcthorse")
	require.NoError(t, err)
	require.Equal(t, "admin@abasto.ve", u.Email)
	require.NotEqual(t, "correcthorse", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "admin@abasto.ve", "correcthorse")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "admin@abasto.ve", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@abasto.ve", "correcthorse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRecordLoginKeepsAuditTrail(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@b.ve", "A", "correcthorse")
	require.NoError(t, err)

	svc.RecordLogin(ctx, u.ID, "10.0.0.1:52110")
	require.Equal(t, []string{u.ID}, repo.logins)
}

func TestRegisterRejectsShortPasswords(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	_, err := svc.Register(context.Background(), "a@b.ve", "A", "short")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.ve", "A", "correcthorse")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "A@B.VE", "B", "correcthorse")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestChangePassword(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@b.ve", "A", "correcthorse")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "nextpassword"), shared.ErrInvalidCredentials)
	require.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "correcthorse", "tiny"), ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "correcthorse", "nextpassword"))

	_, err = svc.Authenticate(ctx, "a@b.ve", "nextpassword")
	require.NoError(t, err)
}
