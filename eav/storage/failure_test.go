package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/ontology/vocab"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewStore(mockDB, nil), mock
}

func TestAppend_InsertFailureRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(7, 1))
	prep := mock.ExpectPrepare("INSERT INTO facts")
	prep.ExpectExec().WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := store.Append(context.Background(), "user:alice", []types.Fact{
		types.NewFact(ex+"rex", vocab.RDFSLabel, types.String("Rex")),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Zero(t, store.Generation(), "failed writes do not bump the generation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_ForeignKeyFailureIsAssertion(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(7, 1))
	prep := mock.ExpectPrepare("INSERT INTO facts")
	prep.ExpectExec().WillReturnError(errors.New("FOREIGN KEY constraint failed"))
	mock.ExpectRollback()

	_, err := store.Append(context.Background(), "user:alice", []types.Fact{
		types.NewFact(ex+"rex", vocab.RDFSLabel, types.String("Rex")),
	})
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetract_CommitFailureReported(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE facts SET retracted = 1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	_, err := store.Retract(context.Background(), eav.RetractFilter{Origin: "file:a.nt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit write transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetract_FlipMismatchIsAssertion(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE facts SET retracted = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := store.Retract(context.Background(), eav.RetractFilter{Origin: "file:a.nt"})
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
