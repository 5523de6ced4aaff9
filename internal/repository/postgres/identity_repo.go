package postgres

import (
	"context"

	"github.com/dom/vehicle-reservation/internal/domain"
	"gorm.io/gorm"
)

type userCredentialRepository struct {
	store[domain.UserCredential]
}

func NewUserCredentialRepository(db *gorm.DB) *userCredentialRepository {
	return &userCredentialRepository{store[domain.UserCredential]{db: db}}
}

func (r *userCredentialRepository) GetByUsername(ctx context.Context, username string) (*domain.UserCredential, error) {
	return first[domain.UserCredential](ctx, r.db, "LOWER(username) = ?", domain.NormalizeUsername(username))
}

type userDetailRepository struct {
	store[domain.UserDetail]
}

func NewUserDetailRepository(db *gorm.DB) *userDetailRepository {
	return &userDetailRepository{store[domain.UserDetail]{db: db}}
}

func (r *userDetailRepository) GetByUserID(ctx context.Context, userID int64) (*domain.UserDetail, error) {
	return first[domain.UserDetail](ctx, r.db, "user_id = ?", userID)
}
