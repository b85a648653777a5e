package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"train-booking-backend/config"
	"train-booking-backend/models"
)

func init() {
	passwordCost = bcrypt.MinCost
}

// fixedNow is "today" for every test clock.
var fixedNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// daysFromNow renders the journey date n days after fixedNow.
func daysFromNow(n int) string {
	return fixedNow.AddDate(0, 0, n).Format(models.DateLayout)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	db         *gorm.DB
	bookings   *BookingService
	passengers *PassengerService
	user       models.User
	train      models.Train
	fare       models.FareType
}

func newFixture(t *testing.T, seats int) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{db: db}
	f.user = createUser(t, db, "alice")
	f.train = createTrain(t, db, "Coastal Express", "Chennai", "Mumbai")
	f.fare = createFare(t, db, f.train.ID, models.ClassSecondAC, "1250.00", seats)

	f.bookings = NewBookingService(db)
	f.bookings.Clock = fixedClock
	f.passengers = NewPassengerService(db)
	return f
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createTrain(t *testing.T, db *gorm.DB, name, source, destination string, days ...models.DayOfWeek) models.Train {
	t.Helper()
	tr := models.Train{
		TrainName:     name,
		Source:        source,
		Destination:   destination,
		DepartureTime: datatypes.NewTime(8, 0, 0, 0),
		ArrivalTime:   datatypes.NewTime(20, 30, 0, 0),
		Status:        models.TrainActive,
	}
	for _, d := range days {
		tr.Schedules = append(tr.Schedules, models.TrainSchedule{DayOfWeek: d})
	}
	require.NoError(t, db.Create(&tr).Error)
	return tr
}

func createFare(t *testing.T, db *gorm.DB, trainID uint, class models.ClassType, price string, seats int) models.FareType {
	t.Helper()
	f := models.FareType{
		TrainID:        trainID,
		ClassType:      class,
		Price:          decimal.RequireFromString(price),
		SeatsAvailable: seats,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}

func passenger(name, idProof string) PassengerInput {
	return PassengerInput{Name: name, Age: 30, Gender: "MALE", IDProof: idProof}
}

// idProof builds a distinct valid 12 digit id.
func idProof(n int) string {
	return fmt.Sprintf("%012d", 100000000000+n)
}

func (f *fixture) request(journeyDate string, passengers ...PassengerInput) CreateBookingInput {
	return CreateBookingInput{
		UserID:      f.user.ID,
		TrainID:     f.train.ID,
		FareTypeID:  f.fare.ID,
		JourneyDate: journeyDate,
		TotalFare:   decimal.RequireFromString("2500.00"),
		Passengers:  passengers,
	}
}

func (f *fixture) book(t *testing.T, journeyDate string, passengers ...PassengerInput) *models.BookingResponse {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), f.request(journeyDate, passengers...))
	require.NoError(t, err)
	return b
}

func (f *fixture) seats(t *testing.T) int {
	t.Helper()
	n, err := seatsAvailable(f.db, f.fare.ID)
	require.NoError(t, err)
	return n
}

func (f *fixture) status(t *testing.T, bookingID uint) models.BookingStatus {
	t.Helper()
	var b models.Booking
	require.NoError(t, f.db.First(&b, bookingID).Error)
	return b.Status
}

// interleave runs competitor once, right before the first statement on table
// reaches the callback point that register belongs to. With locked set, only
// statements carrying a row lock (FOR UPDATE) trigger it. competitor gets a
// session on the statement's own connection, so its writes land exactly between
// the caller's earlier reads and this statement.
func interleave(t *testing.T, register func(string, func(*gorm.DB)) error, table string, locked bool, competitor func(conn *gorm.DB) error) *bool {
	t.Helper()
	fired := false
	require.NoError(t, register("test:interleave_"+table, func(db *gorm.DB) {
		if fired || db.Statement.Table != table {
			return
		}
		if _, hasLock := db.Statement.Clauses["FOR"]; locked && !hasLock {
			return
		}
		fired = true
		require.NoError(t, competitor(db.Session(&gorm.Session{NewDB: true})))
	}))
	return &fired
}
