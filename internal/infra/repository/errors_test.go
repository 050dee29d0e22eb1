package repository

import (
	"context"
	"errors"
	"testing"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), repo.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), repo.ErrConflict)
	assert.ErrorIs(t, translate(context.DeadlineExceeded), repo.ErrLockTimeout)

	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505", ConstraintName: "uq_variant_size"}), repo.ErrConflict)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "55P03"}), repo.ErrLockTimeout)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "57014"}), repo.ErrLockTimeout)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "40P01"}), repo.ErrLockTimeout)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23503", ConstraintName: "fk_cart_items_customization_id"}), repo.ErrReferenced)
	assert.ErrorIs(t, translate(gorm.ErrForeignKeyViolated), repo.ErrReferenced)
	assert.Equal(t, error(&pgconn.PgError{Code: "23502"}), translate(&pgconn.PgError{Code: "23502"}))
}

func TestAffected(t *testing.T) {
	assert.ErrorIs(t, affected(&gorm.DB{RowsAffected: 0}), repo.ErrNotFound)
	assert.NoError(t, affected(&gorm.DB{RowsAffected: 1}))
	assert.ErrorIs(t, affected(&gorm.DB{Error: gorm.ErrRecordNotFound}), repo.ErrNotFound)
}
