package db_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careers/listing-service/internal/db"
)

func TestMigrate_AppliesEveryStepInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for _, m := range db.Migrations {
		mock.ExpectExec(regexp.QuoteMeta(m.SQL)).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	require.NoError(t, db.Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsAtFirstFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(db.Migrations[0].SQL)).WillReturnResult(pgxmock.NewResult("DO", 0))
	mock.ExpectExec(regexp.QuoteMeta(db.Migrations[1].SQL)).WillReturnError(errors.New("permission denied"))

	err = db.Migrate(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), db.Migrations[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_AreIdempotent(t *testing.T) {
	for _, m := range db.Migrations {
		ok := regexp.MustCompile(`IF NOT EXISTS|duplicate_object`).MatchString(m.SQL)
		assert.True(t, ok, "migration %s must be safe to re-run", m.Name)
	}
}
