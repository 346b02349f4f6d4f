package common

import (
	"errors"
	"log"
	"testing"

	"frs/src/db"
	"frs/src/lib"
	"frs/src/models"
	"frs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func expectFlightRow(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "flight_number", "total_seats", "available_seats"}).
			AddRow(1, "FR100", 180, 150))
}

func TestCreateNewBookingCompensatesOnPaymentFailure(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	NewPaymentIntentClient(func(amount int64, currency string, bookingId uint) (*stripe.PaymentIntent, error) {
		return nil, errors.New("gateway down")
	})
	defer NewPaymentIntentClient(lib.CreateBookingPaymentIntent)

	expectFlightRow(mock)
	expectFlightRow(mock)
	mock.ExpectQuery(`SELECT \* FROM "prices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "flight_id", "fare_class", "currency", "unit_amount"}).
			AddRow(7, 1, "economy", "usd", 10000))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "passengers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Compensation removes the passengers and the booking for real, not
	// via deleted_at, so the passport and reference indexes free up for a
	// retry. There is no flights update here, the seat decrement stays.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "passengers"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := CreateNewBooking(&CreateBookingInput{
		FlightID:  1,
		FareClass: types.FARE_ECONOMY,
		Passengers: []types.PassengerInput{
			{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-04-21", PassportNumber: "P1234567", Nationality: "GB"},
		},
		ContactEmail: "guest@example.com",
	})
	assert.ErrorIs(t, err, types.ErrPaymentIntentFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNewBookingRejectsDuplicatePassports(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	expectFlightRow(mock)
	expectFlightRow(mock)
	mock.ExpectQuery(`SELECT \* FROM "prices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "flight_id", "fare_class", "currency", "unit_amount"}).
			AddRow(7, 1, "economy", "usd", 10000))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	// The duplicate set check fires before any passenger insert, so
	// compensation only has the booking row to remove.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "passengers"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := CreateNewBooking(&CreateBookingInput{
		FlightID:  1,
		FareClass: types.FARE_ECONOMY,
		Passengers: []types.PassengerInput{
			{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1990-04-21", PassportNumber: "P1234567", Nationality: "GB"},
			{FirstName: "Alan", LastName: "Turing", DateOfBirth: "1991-06-23", PassportNumber: "P1234567", Nationality: "GB"},
		},
		ContactEmail: "guest@example.com",
	})
	assert.ErrorIs(t, err, types.ErrDuplicatePassport)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNewBookingMissingFlight(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := CreateNewBooking(&CreateBookingInput{FlightID: 99, FareClass: types.FARE_ECONOMY, PassengerCount: 1})
	assert.ErrorIs(t, err, types.ErrFlightNotFound)
}

func TestCreateNewBookingInsufficientSeats(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats", "available_seats"}).
			AddRow(1, 180, 1))
	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats", "available_seats"}).
			AddRow(1, 180, 1))

	_, err := CreateNewBooking(&CreateBookingInput{FlightID: 1, FareClass: types.FARE_ECONOMY, PassengerCount: 2})
	assert.ErrorIs(t, err, types.ErrInsufficientSeats)
}

func TestConfirmBookingRejectsTerminalStatus(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_ref", "status"}).
			AddRow(11, "AB12CD", "canceled"))

	_, err := ConfirmBooking(11)
	assert.ErrorIs(t, err, types.ErrInvalidStatusTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingRejectsCompletedBooking(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_ref", "status"}).
			AddRow(11, "AB12CD", "completed"))
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := CancelBooking(11, "changed plans")
	assert.ErrorIs(t, err, types.ErrInvalidStatusTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmBookingLostRace(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_ref", "status"}).
			AddRow(11, "AB12CD", "pending"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := ConfirmBooking(11)
	assert.ErrorIs(t, err, types.ErrInvalidStatusTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingLostRace(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_ref", "status"}).
			AddRow(11, "AB12CD", "pending"))
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := CancelBooking(11, "changed plans")
	assert.ErrorIs(t, err, types.ErrInvalidStatusTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingNotificationDataCarriesGuestContacts(t *testing.T) {
	booking := models.Booking{
		ID:           11,
		BookingRef:   "AB12CD",
		ContactEmail: "guest@example.com",
		ContactPhone: "+15550100",
	}
	data := BookingNotificationData(&booking)
	assert.Equal(t, "AB12CD", data["booking_ref"])
	assert.Equal(t, "guest@example.com", data["contact_email"])
	assert.Equal(t, "+15550100", data["contact_phone"])

	email, phone := resolveRecipients(nil, data)
	assert.Equal(t, "guest@example.com", email)
	assert.Equal(t, "+15550100", phone)

	owned := models.Booking{ID: 12, BookingRef: "CD34EF"}
	data = BookingNotificationData(&owned)
	assert.NotContains(t, data, "contact_email")
	assert.NotContains(t, data, "contact_phone")
}

func expectGuestBookingRows(mock sqlmock.Sqlmock, userId any, lastName string) {
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_ref", "user_id", "flight_id", "price_id", "status"}).
			AddRow(11, "AB12CD", userId, 1, 7, "pending"))
	// Preloads run alphabetically: Flight, Passengers, Payment, Price.
	mock.ExpectQuery(`SELECT \* FROM "flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "passengers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "last_name"}).
			AddRow(21, 11, lastName))
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "prices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
}

func TestFindGuestBookingMatchesLastName(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	expectGuestBookingRows(mock, nil, "Lovelace")

	booking, err := FindGuestBooking("ab12cd", "LOVELACE")
	assert.NoError(t, err)
	assert.Equal(t, "AB12CD", booking.BookingRef)
}

func TestFindGuestBookingLastNameMismatch(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	expectGuestBookingRows(mock, nil, "Lovelace")

	_, err := FindGuestBooking("AB12CD", "Turing")
	assert.ErrorIs(t, err, types.ErrBookingNotFound)
}

func TestFindGuestBookingHidesOwnedBooking(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	expectGuestBookingRows(mock, 5, "Lovelace")

	_, err := FindGuestBooking("AB12CD", "Lovelace")
	assert.ErrorIs(t, err, types.ErrBookingNotFound)
}

func TestGetBookingForUserEnforcesOwnership(t *testing.T) {
	gormDB, mock := NewMockDB()
	db.NewDB(gormDB)

	expectGuestBookingRows(mock, 5, "Lovelace")

	_, err := GetBookingForUser(11, 6)
	assert.ErrorIs(t, err, types.ErrForbidden)
}
