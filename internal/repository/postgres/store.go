package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/vehicle-reservation/internal/domain"
	"gorm.io/gorm"
)

// store implements repository.Store for any gorm model.
type store[E any] struct {
	db *gorm.DB
}

func (s *store[E]) Get(ctx context.Context, id int64) (*E, error) {
	var e E
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *store[E]) List(ctx context.Context) ([]*E, error) {
	var out []*E
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *store[E]) Insert(ctx context.Context, e *E) error {
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

// Replace writes every column of an existing row, zero values included.
func (s *store[E]) Replace(ctx context.Context, e *E) error {
	res := s.db.WithContext(ctx).Model(e).Select("*").Omit("created_at").Updates(e)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *store[E]) Delete(ctx context.Context, id int64) error {
	return translate(s.db.WithContext(ctx).Delete(new(E), id).Error)
}

// first returns the lowest-id row matching the condition.
func first[E any](ctx context.Context, db *gorm.DB, query interface{}, args ...interface{}) (*E, error) {
	var e E
	if err := db.WithContext(ctx).Where(query, args...).Order("id ASC").First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func where[E any](ctx context.Context, db *gorm.DB, query interface{}, args ...interface{}) ([]*E, error) {
	var out []*E
	if err := db.WithContext(ctx).Where(query, args...).Order("id ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// translate maps gorm errors onto the domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domain.ErrMissingReference, err)
	default:
		return err
	}
}
