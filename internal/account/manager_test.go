package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/KazimFedxD/FinCore/internal/domain"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, acc *domain.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*domain.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*domain.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) Update(ctx context.Context, acc *domain.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *mockAccountRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func newTestManager(repo *mockAccountRepo) *Manager {
	m := NewManager(repo)
	m.cost = bcrypt.MinCost
	return m
}

func TestValidate_InvalidEmail(t *testing.T) {
	m := newTestManager(&mockAccountRepo{})

	err := m.Validate(context.Background(), "not-an-email", "tester")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestValidate_EmailExists(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&domain.Account{ID: "acct-1", Email: "taken@example.com"}, nil)

	m := newTestManager(repo)
	err := m.Validate(context.Background(), "taken@example.com", "tester")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestValidate_UsernameBounds(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	m := newTestManager(repo)

	assert.ErrorIs(t, m.Validate(context.Background(), "user@example.com", "abc"), ErrInvalidUsername)
	assert.ErrorIs(t, m.Validate(context.Background(), "user@example.com",
		"this-username-is-way-too-long-to-pass"), ErrInvalidUsername)
	assert.NoError(t, m.Validate(context.Background(), "user@example.com", "abcd"))
}

func TestCreate_DerivesUsernameFromEmail(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, apperrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)

	m := newTestManager(repo)
	acc, err := m.Create(context.Background(), CreateInput{
		Email:    "a@example.com",
		Password: "pw12345",
	})
	require.NoError(t, err)

	// Derived usernames are accepted as-is, even below the caller-supplied
	// length bound.
	assert.Equal(t, "a", acc.Username)
	assert.False(t, acc.Verified)
	assert.True(t, acc.IsActive)
	assert.NotEmpty(t, acc.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("pw12345")))
	repo.AssertExpectations(t)
}

func TestCreate_LostRaceSurfacesEmailExists(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("account", "email", "user@example.com"))

	m := newTestManager(repo)
	_, err := m.Create(context.Background(), CreateInput{
		Email:    "user@example.com",
		Username: "tester",
		Password: "pw12345",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreate_LowercasesEmail(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, "User@Example.COM").Return(nil, apperrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(repo)
	acc, err := m.Create(context.Background(), CreateInput{
		Email:    "User@Example.COM",
		Username: "tester",
		Password: "pw12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", acc.Email)
}

func TestCreateSuperuser_ForcesFlags(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	m := newTestManager(repo)
	acc, err := m.CreateSuperuser(context.Background(), CreateInput{
		Email:    "admin@example.com",
		Username: "admin",
		Password: "pw12345",
	})
	require.NoError(t, err)
	assert.True(t, acc.IsStaff)
	assert.True(t, acc.IsSuperuser)
	assert.True(t, acc.Verified)
	assert.Equal(t, domain.RoleAdmin, acc.Role())
}

func TestLookupByEmail_AbsenceIsNotAnError(t *testing.T) {
	repo := &mockAccountRepo{}
	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	m := newTestManager(repo)
	acc, err := m.LookupByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, acc)
}
