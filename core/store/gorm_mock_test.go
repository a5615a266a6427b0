package store

import (
	"context"
	"errors"
	"testing"

	"watchstate/core/identity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGorm_BeginFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := NewGorm(db).Begin(context.Background())
	require.Error(t, err)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "begin", se.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_CommitFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock"))

	tx, err := NewGorm(db).Begin(context.Background())
	require.NoError(t, err)

	err = tx.Commit()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "commit", se.Op)
	assert.Contains(t, err.Error(), "deadlock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_InsertFailureRollsBackAutoCommit(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `state`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewGorm(db).Insert(context.Background(), newMovie(identity.Set{"imdb": "tt1"}, true, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindQueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT state.\\* FROM `state` JOIN state_pointers").WillReturnError(errors.New("gone away"))

	_, err := NewGorm(db).FindByPointers(context.Background(), "movie", []identity.Pointer{"imdb://tt1"})
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "find", se.Op)
}
