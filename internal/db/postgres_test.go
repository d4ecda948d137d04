package db

import (
	"context"
	"errors"
	"testing"

	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

type fakeTx struct {
	pgx.Tx
	rollbackErr error
	commitErr   error
	rolledBack  bool
	committed   bool
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func TestFinishTransaction_Commit(t *testing.T) {
	tx := &fakeTx{}

	assert.NoError(t, finishTransaction(context.Background(), tx, nil))
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestFinishTransaction_CommitFailure(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("conn closed")}

	err := finishTransaction(context.Background(), tx, nil)
	assert.ErrorContains(t, err, "failed to commit transaction")
	assert.ErrorIs(t, err, tx.commitErr)
}

func TestFinishTransaction_RollbackKeepsError(t *testing.T) {
	tx := &fakeTx{}

	err := finishTransaction(context.Background(), tx, apperrors.ErrCourseNotFound)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestFinishTransaction_FailedRollbackKeepsBothErrors(t *testing.T) {
	rbErr := errors.New("rollback failed")
	tx := &fakeTx{rollbackErr: rbErr}

	err := finishTransaction(context.Background(), tx, apperrors.ErrCourseNotFound)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, err, rbErr)
}
