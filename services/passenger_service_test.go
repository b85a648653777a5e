package services

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"train-booking-backend/models"
)

func requireValidation(t *testing.T, err error, message string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, message, ve.Message)
}

func TestAddPassenger(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)))
	require.Equal(t, 3, f.seats(t))

	p, err := f.passengers.AddPassenger(ctx, b.BookingID, PassengerInput{Name: " Meena Kumar ", Age: 28, Gender: "female", IDProof: idProof(2)})
	require.NoError(t, err)
	assert.Equal(t, "Meena Kumar", p.Name)
	assert.Equal(t, models.GenderFemale, p.Gender)
	assert.Equal(t, 2, f.seats(t))

	got, err := f.passengers.PassengersByBooking(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi Kumar", "Meena Kumar"}, lo.Map(got, func(p models.PassengerResponse, _ int) string { return p.Name }))
}

func TestAddPassenger_DuplicateIDProofInBooking(t *testing.T) {
	f := newFixture(t, 4)
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)))

	_, err := f.passengers.AddPassenger(context.Background(), b.BookingID, passenger("Ravi Again", idProof(1)))

	requireValidation(t, err, "Passenger with ID proof "+idProof(1)+" already exists in this booking")
	assert.Equal(t, 3, f.seats(t))
}

func TestAddPassenger_NoSeatsLeft(t *testing.T) {
	f := newFixture(t, 1)
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)))

	_, err := f.passengers.AddPassenger(context.Background(), b.BookingID, passenger("Meena Kumar", idProof(2)))

	requireValidation(t, err, "No seats available for this booking")
	assert.Zero(t, f.seats(t))
}

func TestAddPassenger_CapAtTen(t *testing.T) {
	f := newFixture(t, 20)
	in := make([]PassengerInput, 0, models.MaxPassengersPerBooking)
	for i := 0; i < models.MaxPassengersPerBooking; i++ {
		in = append(in, passenger("Group Member", idProof(i)))
	}
	b := f.book(t, daysFromNow(2), in...)

	_, err := f.passengers.AddPassenger(context.Background(), b.BookingID, passenger("One Too Many", idProof(99)))

	requireValidation(t, err, "A booking cannot have more than 10 passengers")
	assert.Equal(t, 10, f.seats(t))
}

func TestAddPassenger_UnknownBooking(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.passengers.AddPassenger(context.Background(), 404, passenger("Ravi Kumar", idProof(1)))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePassenger(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)), passenger("Meena Kumar", idProof(2)))
	ravi := b.Passengers[0]

	updated, err := f.passengers.UpdatePassenger(ctx, ravi.PassengerID, PassengerInput{Name: "Ravi K Sharma", Age: 31, Gender: "OTHER", IDProof: idProof(1)})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K Sharma", updated.Name)
	assert.Equal(t, 31, updated.Age)
	assert.Equal(t, models.GenderOther, updated.Gender)
	assert.Equal(t, 3, f.seats(t))

	_, err = f.passengers.UpdatePassenger(ctx, ravi.PassengerID, passenger("Ravi Kumar", idProof(2)))
	requireValidation(t, err, "Passenger with ID proof "+idProof(2)+" already exists in this booking")

	_, err = f.passengers.UpdatePassenger(ctx, ravi.PassengerID, PassengerInput{Name: "Ravi", Age: 200, Gender: "MALE", IDProof: idProof(1)})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "age")

	_, err = f.passengers.UpdatePassenger(ctx, 999, passenger("Ravi Kumar", idProof(1)))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePassenger_ReturnsSeat(t *testing.T) {
	f := newFixture(t, 5)
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)), passenger("Meena Kumar", idProof(2)))
	require.Equal(t, 3, f.seats(t))

	require.NoError(t, f.passengers.DeletePassenger(context.Background(), b.Passengers[1].PassengerID))

	assert.Equal(t, 4, f.seats(t))
	assert.Equal(t, models.BookingConfirmed, f.status(t, b.BookingID))
}

func TestDeletePassenger_LastOneCancelsBooking(t *testing.T) {
	f := newFixture(t, 5)
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)))
	require.Equal(t, 4, f.seats(t))

	require.NoError(t, f.passengers.DeletePassenger(context.Background(), b.Passengers[0].PassengerID))

	assert.Equal(t, 5, f.seats(t))
	assert.Equal(t, models.BookingCancelled, f.status(t, b.BookingID))

	// the seat is not returned a second time
	_, err := f.bookings.CancelBooking(context.Background(), b.BookingID)
	requireValidation(t, err, "Booking is already cancelled")
	assert.Equal(t, 5, f.seats(t))
}

func TestPassengerMutationsOnCancelledBooking(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)), passenger("Meena Kumar", idProof(2)))
	_, err := f.bookings.CancelBooking(ctx, b.BookingID)
	require.NoError(t, err)
	require.Equal(t, 5, f.seats(t))

	_, err = f.passengers.AddPassenger(ctx, b.BookingID, passenger("Anil Kumar", idProof(3)))
	requireValidation(t, err, "Cannot add passenger to cancelled booking")

	_, err = f.passengers.UpdatePassenger(ctx, b.Passengers[0].PassengerID, passenger("Ravi Kumar", idProof(1)))
	requireValidation(t, err, "Cannot update passenger in cancelled booking")

	err = f.passengers.DeletePassenger(ctx, b.Passengers[0].PassengerID)
	requireValidation(t, err, "Cannot delete passenger from cancelled booking")

	err = f.bookings.DeleteBooking(ctx, b.BookingID)
	requireValidation(t, err, "Cannot delete a cancelled booking")

	assert.Equal(t, 5, f.seats(t))
	n, err := f.passengers.CountByBooking(ctx, b.BookingID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestPassengerQueries(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()
	first := f.book(t, daysFromNow(2),
		PassengerInput{Name: "Ravi Kumar", Age: 30, Gender: "MALE", IDProof: idProof(1)},
		PassengerInput{Name: "Meena Kumar", Age: 25, Gender: "FEMALE", IDProof: idProof(2)},
	)
	f.book(t, daysFromNow(3),
		PassengerInput{Name: "Ravi Kumar", Age: 30, Gender: "MALE", IDProof: idProof(1)},
		PassengerInput{Name: "Kim Lee", Age: 60, Gender: "OTHER", IDProof: idProof(3)},
	)

	got, err := f.passengers.GetPassenger(ctx, first.Passengers[1].PassengerID)
	require.NoError(t, err)
	assert.Equal(t, "Meena Kumar", got.Name)

	_, err = f.passengers.GetPassenger(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.passengers.PassengersByBooking(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	sameID, err := f.passengers.PassengersByIDProof(ctx, idProof(1))
	require.NoError(t, err)
	assert.Len(t, sameID, 2)

	byName, err := f.passengers.SearchPassengersByName(ctx, "kumar")
	require.NoError(t, err)
	assert.Len(t, byName, 3)

	byProof, err := f.passengers.SearchPassengersByIDProof(ctx, idProof(3)[8:])
	require.NoError(t, err)
	require.Len(t, byProof, 1)
	assert.Equal(t, "Kim Lee", byProof[0].Name)

	ages, err := f.passengers.PassengersByAgeRange(ctx, 26, 60)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 30, 60}, lo.Map(ages, func(p models.PassengerResponse, _ int) int { return p.Age }))

	_, err = f.passengers.PassengersByAgeRange(ctx, 60, 26)
	requireValidation(t, err, "Minimum age must not exceed maximum age")

	women, err := f.passengers.PassengersByGender(ctx, "female")
	require.NoError(t, err)
	require.Len(t, women, 1)

	_, err = f.passengers.PassengersByGender(ctx, "unknown")
	requireValidation(t, err, "Invalid gender: unknown")

	men, err := f.passengers.CountByGender(ctx, "MALE")
	require.NoError(t, err)
	assert.EqualValues(t, 2, men)

	exists, err := f.passengers.ExistsByIDProof(ctx, idProof(3))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.passengers.ExistsInBooking(ctx, first.BookingID, idProof(3))
	require.NoError(t, err)
	assert.False(t, exists)

	stats, err := f.passengers.GetPassengerStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PassengerStatistics{
		TotalPassengers:  4,
		MalePassengers:   2,
		FemalePassengers: 1,
		OtherPassengers:  1,
		AverageAge:       36.25,
	}, *stats)
}

func TestPassengerStatistics_Empty(t *testing.T) {
	f := newFixture(t, 1)
	stats, err := f.passengers.GetPassengerStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PassengerStatistics{}, *stats)
}

// removeConcurrently deletes the passenger and returns its seat on the booking
// lock, as a competing DeletePassenger that got there first would.
func removeConcurrently(t *testing.T, f *fixture, passengerID uint) *bool {
	t.Helper()
	return interleave(t, f.db.Callback().Query().Before("gorm:query").Register, "bookings", true, func(conn *gorm.DB) error {
		if err := conn.Exec("DELETE FROM passengers WHERE id = ?", passengerID).Error; err != nil {
			return err
		}
		return conn.Exec("UPDATE fare_types SET seats_available = seats_available + 1 WHERE id = ?", f.fare.ID).Error
	})
}

func TestDeletePassenger_RemovedWhileWaitingForLock(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)), passenger("Anil Rao", idProof(2)))
	require.Equal(t, 3, f.seats(t))
	target := b.Passengers[0].PassengerID

	fired := removeConcurrently(t, f, target)
	err := f.passengers.DeletePassenger(ctx, target)
	require.True(t, *fired)
	require.ErrorIs(t, err, ErrNotFound)

	// the seat is returned at most once, and nothing else moved
	assert.Equal(t, 3, f.seats(t))
	n, err := f.passengers.CountByBooking(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, models.BookingConfirmed, f.status(t, b.BookingID))
}

func TestUpdatePassenger_RemovedWhileWaitingForLock(t *testing.T) {
	f := newFixture(t, 5)
	b := f.book(t, daysFromNow(2), passenger("Ravi Kumar", idProof(1)), passenger("Anil Rao", idProof(2)))
	target := b.Passengers[1].PassengerID

	fired := removeConcurrently(t, f, target)
	_, err := f.passengers.UpdatePassenger(context.Background(), target, passenger("Anil Rao", idProof(3)))
	require.True(t, *fired)
	require.ErrorIs(t, err, ErrNotFound)
}
