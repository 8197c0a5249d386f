package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KazimFedxD/FinCore/internal/domain"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
)

func newAccountTestFixture(t *testing.T) (*AccountRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewAccountRepository(mock), mock
}

func sampleAccount() *domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Account{
		ID:           "acct-1234",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash-abc",
		Verified:     true,
		IsStaff:      false,
		IsSuperuser:  false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func accountColumns() []string {
	return []string{
		"id", "email", "username", "password_hash", "verified",
		"is_staff", "is_superuser", "is_active", "last_login",
		"created_at", "updated_at",
	}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountColumns()).AddRow(
		a.ID, a.Email, a.Username, a.PasswordHash, a.Verified,
		a.IsStaff, a.IsSuperuser, a.IsActive, a.LastLogin,
		a.CreatedAt, a.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// AccountRepository
// ---------------------------------------------------------------------------

func TestAccountRepository_Create_Success(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(
			a.ID, a.Email, a.Username, a.PasswordHash, a.Verified,
			a.IsStaff, a.IsSuperuser, a.IsActive, a.CreatedAt, a.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(
			a.ID, a.Email, a.Username, a.PasswordHash, a.Verified,
			a.IsStaff, a.IsSuperuser, a.IsActive, a.CreatedAt, a.UpdatedAt,
		).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "accounts_email_idx" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), a)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestAccountRepository_GetByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("Alice@Example.COM").
		WillReturnRows(accountRow(a))

	got, err := repo.GetByEmail(context.Background(), "Alice@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.Email, got.Email)
}

func TestAccountRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(accountColumns()))

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountRepository_Update_NotFound(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectExec("UPDATE accounts").
		WithArgs(
			a.Email, a.Username, a.PasswordHash, a.Verified,
			a.IsStaff, a.IsSuperuser, a.IsActive, pgxmock.AnyArg(), a.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), a)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountRepository_UpdateLastLogin(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE accounts SET last_login").
		WithArgs(at, "acct-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateLastLogin(context.Background(), "acct-1234", at)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// RefreshTokenRepository
// ---------------------------------------------------------------------------

func newTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewRefreshTokenRepository(mock), mock
}

func TestRefreshTokenRepository_Create(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	expiresAt := time.Now().UTC().Add(7 * 24 * time.Hour)
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs("acct-1234", "deadbeef", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), "acct-1234", "deadbeef", expiresAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows := pgxmock.NewRows([]string{"id", "account_id", "token_hash", "expires_at", "created_at", "revoked_at"}).
		AddRow("tok-1", "acct-1234", "deadbeef", now.Add(time.Hour), now, nil)

	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
		WithArgs("deadbeef").
		WillReturnRows(rows)

	tok, err := repo.GetByHash(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "acct-1234", tok.AccountID)
	assert.Nil(t, tok.RevokedAt)
}

func TestRefreshTokenRepository_GetByHash_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows([]string{"id", "account_id", "token_hash", "expires_at", "created_at", "revoked_at"}))

	_, err := repo.GetByHash(context.Background(), "unknown")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRefreshTokenRepository_Revoke_UnknownTokenIsNoop(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs("unknown").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Revoke(context.Background(), "unknown")
	assert.NoError(t, err)
}

func TestRefreshTokenRepository_RevokeByAccountID(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE refresh_tokens").
		WithArgs("acct-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.RevokeByAccountID(context.Background(), "acct-1234")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
