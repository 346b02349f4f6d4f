package common

import (
	"testing"

	"frs/src/db"
	"frs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAdjustSeatsDecrement(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights" SET "available_seats"=available_seats \+ \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := AdjustSeats(gormDB, 1, -2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustSeatsGuardRejectsOverdraw(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := AdjustSeats(gormDB, 1, -5)
	assert.ErrorIs(t, err, types.ErrInsufficientSeats)
}

func TestAdjustSeatsGuardRejectsOverfill(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := AdjustSeats(gormDB, 1, 3)
	assert.ErrorIs(t, err, types.ErrSeatUpdateFailed)
}

func TestAdjustSeatsMissingFlight(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := AdjustSeats(gormDB, 42, -1)
	assert.ErrorIs(t, err, types.ErrFlightNotFound)
}

func TestHasAvailableSeats(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats", "available_seats"}).
			AddRow(1, 180, 2))

	ok, err := HasAvailableSeats(gormDB, 1, 2)
	assert.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats", "available_seats"}).
			AddRow(1, 180, 2))

	ok, err = HasAvailableSeats(gormDB, 1, 3)
	assert.NoError(t, err)
	assert.False(t, ok)
}
