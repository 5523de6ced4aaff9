package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/dom/vehicle-reservation/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateCredential(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.CreateUserInput
		setup   func(h *harness)
		wantErr error
	}{
		{
			name:  "successful registration",
			input: service.CreateUserInput{Username: "a@x.com", Password: "p1", Active: true},
		},
		{
			name:  "username is normalized",
			input: service.CreateUserInput{Username: "  A@X.com ", Password: "p1"},
		},
		{
			name:  "duplicate username",
			input: service.CreateUserInput{Username: "a@x.com", Password: "p2"},
			setup: func(h *harness) {
				testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:  "duplicate differs only in case",
			input: service.CreateUserInput{Username: "A@x.COM", Password: "p2"},
			setup: func(h *harness) {
				testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "missing password",
			input:   service.CreateUserInput{Username: "a@x.com"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing username",
			input:   service.CreateUserInput{Password: "p1"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.setup != nil {
				tt.setup(h)
			}

			cred, err := h.services.User.CreateCredential(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", cred.Username)
			assert.NotEqual(t, tt.input.Password, cred.Password, "password is stored hashed")
			assert.Nil(t, cred.UserDetailID)
			assert.Equal(t, []int64{cred.ID}, h.pub.of(domain.KindUserCredential, events.OpCreated))
		})
	}
}

func TestUserService_VerifyPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.services.User.CreateCredential(ctx, service.CreateUserInput{Username: "a@x.com", Password: "p1", Active: true})
	require.NoError(t, err)

	cred, err := h.services.User.VerifyPassword(ctx, "A@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", cred.Username)

	_, err = h.services.User.VerifyPassword(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = h.services.User.VerifyPassword(ctx, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_UpdateCredential(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cred, err := h.services.User.CreateCredential(ctx, service.CreateUserInput{Username: "a@x.com", Password: "p1", Active: true})
	require.NoError(t, err)

	t.Run("empty password keeps the stored hash", func(t *testing.T) {
		updated, err := h.services.User.UpdateCredential(ctx, cred.ID, domain.UserCredential{Username: "ignored@x.com", Active: false})
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", updated.Username)
		assert.False(t, updated.Active)
		assert.Equal(t, cred.Password, updated.Password)

		_, err = h.services.User.VerifyPassword(ctx, "a@x.com", "p1")
		assert.NoError(t, err)
	})

	t.Run("new password is hashed", func(t *testing.T) {
		_, err := h.services.User.UpdateCredential(ctx, cred.ID, domain.UserCredential{Password: "p2", Active: true})
		require.NoError(t, err)

		_, err = h.services.User.VerifyPassword(ctx, "a@x.com", "p2")
		assert.NoError(t, err)
		_, err = h.services.User.VerifyPassword(ctx, "a@x.com", "p1")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := h.services.User.UpdateCredential(ctx, 404, domain.UserCredential{Active: true})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserService_CreateDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches to the credential", func(t *testing.T) {
		h := newHarness(t)
		cred, _ := testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)

		detail, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{FirstName: "John", LastName: "Doe", UserID: 999})
		require.NoError(t, err)
		assert.Equal(t, cred.ID, detail.UserID)
		assert.Equal(t, "a@x.com", detail.Username)

		stored, err := h.services.User.GetCredential(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, stored.UserDetailID)
		assert.Equal(t, detail.ID, *stored.UserDetailID)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.services.User.CreateDetail(ctx, "nobody@x.com", domain.UserDetail{LastName: "Doe"})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		all, err := h.repos.UserDetail.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("second detail conflicts", func(t *testing.T) {
		h := newHarness(t)
		testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)

		_, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{LastName: "Doe"})
		require.NoError(t, err)
		_, err = h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{LastName: "Again"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestUserService_DeleteCredentialCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cred, _ := testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)
	detail, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{LastName: "Doe"})
	require.NoError(t, err)
	h.pub.reset()

	require.NoError(t, h.services.User.DeleteCredential(ctx, "a@x.com"))

	_, err = h.repos.UserCredential.Get(ctx, cred.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.repos.UserDetail.Get(ctx, detail.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []int64{detail.ID}, h.pub.of(domain.KindUserDetail, events.OpDeleted))
	assert.Equal(t, []int64{cred.ID}, h.pub.of(domain.KindUserCredential, events.OpDeleted))

	// deleting an unknown username is not an error
	assert.NoError(t, h.services.User.DeleteCredential(ctx, "a@x.com"))
}

// Credential a@x.com/p1, detail Doe renamed to Smith, then deletion removes
// both records.
func TestUserService_CredentialScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cred, err := h.services.User.CreateCredential(ctx, service.CreateUserInput{Username: "a@x.com", Password: "p1", Active: true})
	require.NoError(t, err)

	detail, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)

	incoming := *detail
	incoming.LastName = "Smith"
	_, err = h.services.User.UpdateDetail(ctx, detail.ID, incoming)
	require.NoError(t, err)

	got, err := h.services.User.GetDetail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Smith", got.LastName)
	assert.Equal(t, "John", got.FirstName)
	assert.Equal(t, cred.ID, got.UserID)
	assert.Equal(t, "a@x.com", got.Username)

	require.NoError(t, h.services.User.DeleteCredential(ctx, "a@x.com"))

	_, err = h.services.User.GetCredential(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.services.User.GetDetail(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.repos.UserDetail.Get(ctx, detail.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// failingCredentials fails the named write so a multi-step user operation
// stops halfway unless its transaction rolls back.
type failingCredentials struct {
	repository.UserCredentialRepository
	failReplace bool
	failDelete  bool
}

func (f *failingCredentials) Replace(ctx context.Context, c *domain.UserCredential) error {
	if f.failReplace {
		return errors.New("connection reset")
	}
	return f.UserCredentialRepository.Replace(ctx, c)
}

func (f *failingCredentials) Delete(ctx context.Context, id int64) error {
	if f.failDelete {
		return errors.New("connection reset")
	}
	return f.UserCredentialRepository.Delete(ctx, id)
}

func TestUserService_CreateDetailRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cred, _ := testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)

	h.repos.Tx = wrappingTx{inner: h.repos.Tx, wrap: func(tx *repository.Repositories) {
		tx.UserCredential = &failingCredentials{UserCredentialRepository: tx.UserCredential, failReplace: true}
	}}

	_, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{LastName: "Doe"})
	require.Error(t, err)

	details, err := h.repos.UserDetail.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, details, "no orphan detail survives")

	stored, err := h.repos.UserCredential.Get(ctx, cred.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.UserDetailID)
	assert.Empty(t, h.pub.of(domain.KindUserDetail, events.OpCreated))
}

func TestUserService_DeleteCredentialRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cred, _ := testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)
	detail, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{LastName: "Doe"})
	require.NoError(t, err)
	h.pub.reset()

	h.repos.Tx = wrappingTx{inner: h.repos.Tx, wrap: func(tx *repository.Repositories) {
		tx.UserCredential = &failingCredentials{UserCredentialRepository: tx.UserCredential, failDelete: true}
	}}

	require.Error(t, h.services.User.DeleteCredential(ctx, "a@x.com"))

	_, err = h.repos.UserDetail.Get(ctx, detail.ID)
	assert.NoError(t, err, "detail survives a failed delete")

	stored, err := h.repos.UserCredential.Get(ctx, cred.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.UserDetailID)
	assert.Equal(t, detail.ID, *stored.UserDetailID)
	assert.Empty(t, h.pub.events)
}

func TestUserService_UpdateDetail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	testutil.NewUserBuilder().WithUsername("a@x.com").Build(t, h.repos)
	other, _ := testutil.NewUserBuilder().WithUsername("b@x.com").Build(t, h.repos)
	detail, err := h.services.User.CreateDetail(ctx, "a@x.com", domain.UserDetail{LastName: "Doe"})
	require.NoError(t, err)

	t.Run("owner cannot be moved", func(t *testing.T) {
		updated, err := h.services.User.UpdateDetail(ctx, detail.ID, domain.UserDetail{UserID: other.ID, LastName: "Smith"})
		require.NoError(t, err)
		assert.Equal(t, detail.UserID, updated.UserID)
		assert.Equal(t, "Smith", updated.LastName)
	})

	t.Run("last write wins", func(t *testing.T) {
		_, err := h.services.User.UpdateDetail(ctx, detail.ID, domain.UserDetail{LastName: "First"})
		require.NoError(t, err)
		_, err = h.services.User.UpdateDetail(ctx, detail.ID, domain.UserDetail{LastName: "Second"})
		require.NoError(t, err)

		got, err := h.services.User.GetDetail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Second", got.LastName)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := h.services.User.UpdateDetail(ctx, 404, domain.UserDetail{LastName: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
