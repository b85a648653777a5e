package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"train-booking-backend/metrics"
	"train-booking-backend/models"
	"train-booking-backend/utils"
)

type PassengerInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100,personname"`
	Age     int    `json:"age" validate:"min=1,max=120"`
	Gender  string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	IDProof string `json:"idProof" validate:"required,idproof"`
}

type CreateBookingInput struct {
	UserID      uint             `json:"userId" validate:"min=1"`
	TrainID     uint             `json:"trainId" validate:"min=1"`
	FareTypeID  uint             `json:"fareTypeId" validate:"min=1"`
	JourneyDate string           `json:"journeyDate" validate:"required,datetime=2006-01-02"`
	TotalFare   decimal.Decimal  `json:"totalFare"`
	Passengers  []PassengerInput `json:"passengers" validate:"dive"`
}

// BookingService owns the booking lifecycle and the seat counters it touches.
type BookingService struct {
	DB *gorm.DB
	// Clock decides what "today" is for journey date checks and queries.
	Clock func() time.Time
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db, Clock: time.Now}
}

func (s *BookingService) today() time.Time {
	return startOfDay(s.Clock())
}

func (s *BookingService) recordFailure(operation string, err error) {
	metrics.OperationFailures.WithLabelValues(operation, failureReason(err)).Inc()
}

func normalizePassenger(in PassengerInput) PassengerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Gender = strings.ToUpper(strings.TrimSpace(in.Gender))
	in.IDProof = strings.TrimSpace(in.IDProof)
	return in
}

func toPassenger(in PassengerInput) models.Passenger {
	return models.Passenger{
		Name:    in.Name,
		Age:     in.Age,
		Gender:  models.Gender(in.Gender),
		IDProof: in.IDProof,
	}
}

// CreateBooking validates the request, takes the seats and persists the booking
// with its passengers in one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.BookingResponse, error) {
	logger := utils.Log(ctx).WithFields(logrus.Fields{
		"user_id":      in.UserID,
		"train_id":     in.TrainID,
		"fare_type_id": in.FareTypeID,
		"passengers":   len(in.Passengers),
	})
	logger.Info("creating booking")

	bookingID, err := s.createBooking(ctx, in)
	if err != nil {
		s.recordFailure("create_booking", err)
		logger.WithError(err).Warn("booking creation rejected")
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	logger.WithField("booking_id", bookingID).Info("booking created")
	return s.GetBooking(ctx, bookingID)
}

func (s *BookingService) createBooking(ctx context.Context, in CreateBookingInput) (uint, error) {
	in.Passengers = lo.Map(in.Passengers, func(p PassengerInput, _ int) PassengerInput {
		return normalizePassenger(p)
	})

	extra := FieldErrors{}
	checkMoney(extra, "totalFare", in.TotalFare)
	if err := mergeFieldErrors(validateStruct(in), extra); err != nil {
		return 0, err
	}

	journeyDate, err := parseDate(in.JourneyDate)
	if err != nil {
		return 0, FieldErrors{"journeyDate": "must be a date in YYYY-MM-DD format"}
	}
	if journeyDate.Before(s.today()) {
		return 0, validationf("Journey date cannot be in the past")
	}

	n := len(in.Passengers)
	if n < 1 || n > models.MaxPassengersPerBooking {
		return 0, validationf("A booking must have between 1 and %d passengers", models.MaxPassengersPerBooking)
	}

	seen := make(map[string]struct{}, n)
	for _, p := range in.Passengers {
		if _, dup := seen[p.IDProof]; dup {
			return 0, validationf("Duplicate ID proof %s in passenger list", p.IDProof)
		}
		seen[p.IDProof] = struct{}{}
	}

	var bookingID uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the user row lock serializes creations for one user, which keeps the
		// one confirmed booking per train and date check below race free
		if _, found, err := findByID[models.User](tx.Clauses(clause.Locking{Strength: "UPDATE"}), in.UserID); err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		} else if !found {
			return validationf("User with ID %d not found", in.UserID)
		}

		if _, found, err := findByID[models.Train](tx, in.TrainID); err != nil {
			return fmt.Errorf("failed to load train: %w", err)
		} else if !found {
			return validationf("Train with ID %d not found", in.TrainID)
		}

		fareType, found, err := findByID[models.FareType](tx, in.FareTypeID)
		if err != nil {
			return fmt.Errorf("failed to load fare type: %w", err)
		}
		if !found {
			return validationf("Fare type with ID %d not found", in.FareTypeID)
		}
		if fareType.TrainID != in.TrainID {
			return validationf("Fare type does not belong to the specified train")
		}

		var existing int64
		if err := tx.Model(&models.Booking{}).
			Where("user_id = ? AND train_id = ? AND journey_date = ? AND status = ?",
				in.UserID, in.TrainID, datatypes.Date(journeyDate), models.BookingConfirmed).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing bookings: %w", err)
		}
		if existing > 0 {
			return validationf("User already has a confirmed booking on this train for %s", in.JourneyDate)
		}

		if fareType.SeatsAvailable < n {
			return notEnoughSeats(fareType.SeatsAvailable, n)
		}
		ok, err := reserveSeats(tx, fareType.ID, n)
		if err != nil {
			return err
		}
		if !ok {
			// lost a race since the read above
			available, err := seatsAvailable(tx, fareType.ID)
			if err != nil {
				return err
			}
			return notEnoughSeats(available, n)
		}

		booking := models.Booking{
			UserID:      in.UserID,
			TrainID:     in.TrainID,
			FareTypeID:  in.FareTypeID,
			JourneyDate: datatypes.Date(journeyDate),
			BookingDate: s.Clock().UTC(),
			TotalFare:   in.TotalFare.Round(2),
			Status:      models.BookingConfirmed,
			Passengers:  make([]models.Passenger, 0, n),
		}
		for _, p := range in.Passengers {
			booking.Passengers = append(booking.Passengers, toPassenger(p))
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		bookingID = booking.ID
		return nil
	})
	return bookingID, err
}

func notEnoughSeats(available, required int) error {
	return validationf("Not enough seats available. Available: %d, Required: %d", available, required)
}

// lockBooking reads a booking with a row lock held until the transaction ends.
func lockBooking(tx *gorm.DB, id uint) (models.Booking, error) {
	var b models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b, notFound("Booking", id)
		}
		return b, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}

// cancelLocked flips a CONFIRMED booking to CANCELLED and returns its seats.
// The status change is conditional so the seats are released at most once.
func cancelLocked(tx *gorm.DB, b models.Booking) error {
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, models.BookingConfirmed).
		Update("status", models.BookingCancelled)
	if res.Error != nil {
		return fmt.Errorf("failed to cancel booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return validationf("Booking is already cancelled")
	}

	var passengers int64
	if err := tx.Model(&models.Passenger{}).Where("booking_id = ?", b.ID).Count(&passengers).Error; err != nil {
		return fmt.Errorf("failed to count passengers: %w", err)
	}
	if err := releaseSeats(tx, b.FareTypeID, int(passengers)); err != nil {
		return err
	}
	metrics.BookingsCancelled.Inc()
	return nil
}

// CancelBooking returns the booking's seats to inventory. Cancelling twice fails.
func (s *BookingService) CancelBooking(ctx context.Context, id uint) (*models.BookingResponse, error) {
	logger := utils.Log(ctx).WithField("booking_id", id)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return validationf("Booking is already cancelled")
		}
		return cancelLocked(tx, b)
	})
	if err != nil {
		s.recordFailure("cancel_booking", err)
		logger.WithError(err).Warn("booking cancellation rejected")
		return nil, err
	}

	logger.Info("booking cancelled")
	return s.GetBooking(ctx, id)
}

// DeleteBooking hard deletes a CONFIRMED booking and its passengers. Seats are
// not returned; cancelled bookings are kept as history and cannot be deleted.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint) error {
	logger := utils.Log(ctx).WithField("booking_id", id)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return validationf("Cannot delete a cancelled booking")
		}
		if err := tx.Where("booking_id = ?", id).Delete(&models.Passenger{}).Error; err != nil {
			return fmt.Errorf("failed to delete passengers: %w", err)
		}
		if err := tx.Delete(&models.Booking{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordFailure("delete_booking", err)
		logger.WithError(err).Warn("booking deletion rejected")
		return err
	}

	logger.Info("booking deleted")
	return nil
}

// UpdateBookingStatus applies a status change. Moving to CANCELLED behaves like
// CancelBooking; nothing moves a booking back to CONFIRMED.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id uint, status string) (*models.BookingResponse, error) {
	target, ok := models.ParseBookingStatus(status)
	if !ok {
		return nil, validationf("Invalid booking status: %s", status)
	}
	if target == models.BookingCancelled {
		return s.CancelBooking(ctx, id)
	}

	view, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Status == models.BookingCancelled {
		err := validationf("Cannot change the status of a cancelled booking")
		s.recordFailure("update_booking_status", err)
		return nil, err
	}
	return view, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (*models.BookingResponse, error) {
	db := s.DB.WithContext(ctx)

	var b models.Booking
	if err := withOrderedPassengers(db).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Booking", id)
		}
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}

	views, err := buildBookingResponses(db, []models.Booking{b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc)
}
