package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserService owns credentials and the detail record attached to each one.
type UserService struct {
	repos      *repository.Repositories
	bcryptCost int
	changes    *Changes
}

func NewUserService(repos *repository.Repositories, bcryptCost int, changes *Changes) *UserService {
	return &UserService{repos: repos, bcryptCost: bcryptCost, changes: changes}
}

type CreateUserInput struct {
	Username string
	Password string
	Active   bool
}

// CreateCredential registers a username. Duplicates are rejected with
// domain.ErrConflict before the insert; the unique index on the table backs
// this up under concurrent registration.
func (s *UserService) CreateCredential(ctx context.Context, input CreateUserInput) (*domain.UserCredential, error) {
	cred, err := s.createCredential(ctx, input)
	return cred, observe(domain.KindUserCredential, "create", err)
}

func (s *UserService) createCredential(ctx context.Context, input CreateUserInput) (*domain.UserCredential, error) {
	username := domain.NormalizeUsername(input.Username)
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	_, err := s.repos.UserCredential.GetByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("%w: username %q is taken", domain.ErrConflict, username)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user %q: %w", username, err)
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	cred := &domain.UserCredential{
		Username: username,
		Password: hash,
		Active:   input.Active,
	}
	if err := s.repos.UserCredential.Insert(ctx, cred); err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}

	s.changes.committed(ctx, domain.KindUserCredential, events.OpCreated, cred.ID)
	return cred, nil
}

func (s *UserService) GetCredential(ctx context.Context, username string) (*domain.UserCredential, error) {
	cred, err := s.repos.UserCredential.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return cred, nil
}

func (s *UserService) ListCredentials(ctx context.Context) ([]*domain.UserCredential, error) {
	return s.repos.UserCredential.List(ctx)
}

// UpdateCredential changes the password and active flag. An empty incoming
// password keeps the stored hash; a non-empty one is hashed before the merge.
func (s *UserService) UpdateCredential(ctx context.Context, id int64, incoming domain.UserCredential) (*domain.UserCredential, error) {
	if incoming.Password != "" {
		hash, err := s.hash(incoming.Password)
		if err != nil {
			return nil, observe(domain.KindUserCredential, "update", err)
		}
		incoming.Password = hash
	}

	cred, err := mergeAndReplace(ctx, s.repos.UserCredential, id, incoming, func(in, stored domain.UserCredential) domain.UserCredential {
		if in.Password == "" {
			in.Password = stored.Password
		}
		return domain.MergeUserCredential(in, stored)
	})
	if err != nil {
		return nil, observe(domain.KindUserCredential, "update", fmt.Errorf("update user %d: %w", id, err))
	}

	s.changes.committed(ctx, domain.KindUserCredential, events.OpUpdated, cred.ID)
	return cred, observe(domain.KindUserCredential, "update", nil)
}

// DeleteCredential removes the credential and, first, its detail. Deleting an
// unknown username is not an error.
func (s *UserService) DeleteCredential(ctx context.Context, username string) error {
	var credID, detailID int64
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		cred, err := tx.UserCredential.GetByUsername(ctx, username)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		detail, err := tx.UserDetail.GetByUserID(ctx, cred.ID)
		switch {
		case err == nil:
			if err := tx.UserDetail.Delete(ctx, detail.ID); err != nil {
				return fmt.Errorf("delete detail %d: %w", detail.ID, err)
			}
			cred.UserDetailID = nil
			if err := tx.UserCredential.Replace(ctx, cred); err != nil {
				return fmt.Errorf("clear detail reference: %w", err)
			}
			detailID = detail.ID
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if err := tx.UserCredential.Delete(ctx, cred.ID); err != nil {
			return err
		}
		credID = cred.ID
		return nil
	})
	if err != nil {
		return observe(domain.KindUserCredential, "delete", fmt.Errorf("delete user %q: %w", username, err))
	}

	if detailID != 0 {
		s.changes.committed(ctx, domain.KindUserDetail, events.OpDeleted, detailID)
	}
	if credID != 0 {
		s.changes.committed(ctx, domain.KindUserCredential, events.OpDeleted, credID)
	}
	return observe(domain.KindUserCredential, "delete", nil)
}

// VerifyPassword returns the credential when password matches. Unknown users
// and mismatches both return domain.ErrInvalidCredentials.
func (s *UserService) VerifyPassword(ctx context.Context, username, password string) (*domain.UserCredential, error) {
	cred, err := s.repos.UserCredential.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return cred, nil
}

// CreateDetail attaches a detail record to the credential named username and
// points the credential at it, in one transaction.
func (s *UserService) CreateDetail(ctx context.Context, username string, detail domain.UserDetail) (*domain.UserDetail, error) {
	var cred *domain.UserCredential
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		var err error
		cred, err = tx.UserCredential.GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		if _, err := tx.UserDetail.GetByUserID(ctx, cred.ID); err == nil {
			return fmt.Errorf("%w: user already has a detail record", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		detail.Base = domain.Base{}
		detail.UserID = cred.ID
		detail.Username = ""
		if err := tx.UserDetail.Insert(ctx, &detail); err != nil {
			return err
		}

		detailID := detail.ID
		cred.UserDetailID = &detailID
		return tx.UserCredential.Replace(ctx, cred)
	})
	if err != nil {
		return nil, observe(domain.KindUserDetail, "create", fmt.Errorf("create detail for %q: %w", username, err))
	}

	detail.Username = cred.Username
	s.changes.committed(ctx, domain.KindUserDetail, events.OpCreated, detail.ID)
	s.changes.committed(ctx, domain.KindUserCredential, events.OpUpdated, cred.ID)
	return &detail, observe(domain.KindUserDetail, "create", nil)
}

func (s *UserService) GetDetail(ctx context.Context, username string) (*domain.UserDetail, error) {
	cred, err := s.repos.UserCredential.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	detail, err := s.repos.UserDetail.GetByUserID(ctx, cred.ID)
	if err != nil {
		return nil, fmt.Errorf("get detail for %q: %w", username, err)
	}
	detail.Username = cred.Username
	return detail, nil
}

func (s *UserService) UpdateDetail(ctx context.Context, id int64, incoming domain.UserDetail) (*domain.UserDetail, error) {
	detail, err := mergeAndReplace(ctx, s.repos.UserDetail, id, incoming, domain.MergeUserDetail)
	if err != nil {
		return nil, observe(domain.KindUserDetail, "update", fmt.Errorf("update detail %d: %w", id, err))
	}
	if cred, err := s.repos.UserCredential.Get(ctx, detail.UserID); err == nil {
		detail.Username = cred.Username
	}

	s.changes.committed(ctx, domain.KindUserDetail, events.OpUpdated, detail.ID)
	return detail, observe(domain.KindUserDetail, "update", nil)
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
