package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"train-booking-backend/metrics"
	"train-booking-backend/models"
	"train-booking-backend/utils"
)

// PassengerService manages the passengers of existing bookings. Adding and
// removing passengers moves seats in the booking's fare type.
type PassengerService struct {
	DB *gorm.DB
}

func NewPassengerService(db *gorm.DB) *PassengerService {
	return &PassengerService{DB: db}
}

func (s *PassengerService) recordFailure(operation string, err error) {
	metrics.OperationFailures.WithLabelValues(operation, failureReason(err)).Inc()
}

func idProofInBooking(tx *gorm.DB, bookingID uint, idProof string, excludeID uint) (bool, error) {
	q := tx.Model(&models.Passenger{}).Where("booking_id = ? AND id_proof = ?", bookingID, idProof)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check id proof: %w", err)
	}
	return n > 0, nil
}

func (s *PassengerService) AddPassenger(ctx context.Context, bookingID uint, in PassengerInput) (*models.PassengerResponse, error) {
	logger := utils.Log(ctx).WithField("booking_id", bookingID)

	in = normalizePassenger(in)
	if err := validateStruct(in); err != nil {
		s.recordFailure("add_passenger", err)
		return nil, err
	}

	var passenger models.Passenger
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return validationf("Cannot add passenger to cancelled booking")
		}

		var current int64
		if err := tx.Model(&models.Passenger{}).Where("booking_id = ?", b.ID).Count(&current).Error; err != nil {
			return fmt.Errorf("failed to count passengers: %w", err)
		}
		if current >= models.MaxPassengersPerBooking {
			return validationf("A booking cannot have more than %d passengers", models.MaxPassengersPerBooking)
		}

		available, err := seatsAvailable(tx, b.FareTypeID)
		if err != nil {
			return err
		}
		if available < 1 {
			return validationf("No seats available for this booking")
		}

		dup, err := idProofInBooking(tx, b.ID, in.IDProof, 0)
		if err != nil {
			return err
		}
		if dup {
			return validationf("Passenger with ID proof %s already exists in this booking", in.IDProof)
		}

		ok, err := reserveSeats(tx, b.FareTypeID, 1)
		if err != nil {
			return err
		}
		if !ok {
			return validationf("No seats available for this booking")
		}

		passenger = toPassenger(in)
		passenger.BookingID = b.ID
		if err := tx.Create(&passenger).Error; err != nil {
			return fmt.Errorf("failed to create passenger: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordFailure("add_passenger", err)
		logger.WithError(err).Warn("add passenger rejected")
		return nil, err
	}

	logger.WithField("passenger_id", passenger.ID).Info("passenger added")
	resp := models.NewPassengerResponse(passenger)
	return &resp, nil
}

// lockPassenger locks the booking that owns a passenger and reads the passenger
// again under that lock, so a concurrent removal is seen as not found.
func lockPassenger(tx *gorm.DB, passengerID uint) (models.Passenger, models.Booking, error) {
	p, found, err := findByID[models.Passenger](tx, passengerID)
	if err != nil {
		return p, models.Booking{}, fmt.Errorf("failed to load passenger: %w", err)
	}
	if !found {
		return p, models.Booking{}, notFound("Passenger", passengerID)
	}

	b, err := lockBooking(tx, p.BookingID)
	if err != nil {
		return p, b, err
	}

	p, found, err = findByID[models.Passenger](tx.Clauses(clause.Locking{Strength: "UPDATE"}), passengerID)
	if err != nil {
		return p, b, fmt.Errorf("failed to load passenger: %w", err)
	}
	if !found || p.BookingID != b.ID {
		return p, b, notFound("Passenger", passengerID)
	}
	return p, b, nil
}

// UpdatePassenger overwrites every field of a passenger. Seat counts are unchanged.
func (s *PassengerService) UpdatePassenger(ctx context.Context, passengerID uint, in PassengerInput) (*models.PassengerResponse, error) {
	logger := utils.Log(ctx).WithField("passenger_id", passengerID)

	in = normalizePassenger(in)
	if err := validateStruct(in); err != nil {
		s.recordFailure("update_passenger", err)
		return nil, err
	}

	var passenger models.Passenger
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, b, err := lockPassenger(tx, passengerID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return validationf("Cannot update passenger in cancelled booking")
		}

		if in.IDProof != p.IDProof {
			dup, err := idProofInBooking(tx, b.ID, in.IDProof, p.ID)
			if err != nil {
				return err
			}
			if dup {
				return validationf("Passenger with ID proof %s already exists in this booking", in.IDProof)
			}
		}

		if err := tx.Model(&p).Updates(map[string]any{
			"name":     in.Name,
			"age":      in.Age,
			"gender":   models.Gender(in.Gender),
			"id_proof": in.IDProof,
		}).Error; err != nil {
			return fmt.Errorf("failed to update passenger: %w", err)
		}
		passenger = p
		passenger.Name = in.Name
		passenger.Age = in.Age
		passenger.Gender = models.Gender(in.Gender)
		passenger.IDProof = in.IDProof
		return nil
	})
	if err != nil {
		s.recordFailure("update_passenger", err)
		logger.WithError(err).Warn("update passenger rejected")
		return nil, err
	}

	logger.Info("passenger updated")
	resp := models.NewPassengerResponse(passenger)
	return &resp, nil
}

// DeletePassenger removes a passenger and returns its seat. Removing the last
// passenger of a booking cancels the booking.
func (s *PassengerService) DeletePassenger(ctx context.Context, passengerID uint) error {
	logger := utils.Log(ctx).WithField("passenger_id", passengerID)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, b, err := lockPassenger(tx, passengerID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return validationf("Cannot delete passenger from cancelled booking")
		}

		res := tx.Where("id = ? AND booking_id = ?", p.ID, b.ID).Delete(&models.Passenger{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete passenger: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return notFound("Passenger", passengerID)
		}
		if err := releaseSeats(tx, b.FareTypeID, 1); err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.Passenger{}).Where("booking_id = ?", b.ID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count passengers: %w", err)
		}
		if remaining == 0 {
			// every seat has already been returned above
			if err := cancelLocked(tx, b); err != nil {
				return err
			}
			logger.WithField("booking_id", b.ID).Info("last passenger removed, booking cancelled")
		}
		return nil
	})
	if err != nil {
		s.recordFailure("delete_passenger", err)
		logger.WithError(err).Warn("delete passenger rejected")
		return err
	}

	logger.Info("passenger deleted")
	return nil
}

func (s *PassengerService) GetPassenger(ctx context.Context, id uint) (*models.PassengerResponse, error) {
	p, found, err := findByID[models.Passenger](s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve passenger: %w", err)
	}
	if !found {
		return nil, notFound("Passenger", id)
	}
	resp := models.NewPassengerResponse(p)
	return &resp, nil
}

func (s *PassengerService) find(ctx context.Context, order string, query string, args ...any) ([]models.PassengerResponse, error) {
	var passengers []models.Passenger
	if err := s.DB.WithContext(ctx).Where(query, args...).Order(order).Find(&passengers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve passengers: %w", err)
	}
	return lo.Map(passengers, func(p models.Passenger, _ int) models.PassengerResponse {
		return models.NewPassengerResponse(p)
	}), nil
}

func (s *PassengerService) PassengersByBooking(ctx context.Context, bookingID uint) ([]models.PassengerResponse, error) {
	if _, found, err := findByID[models.Booking](s.DB.WithContext(ctx), bookingID); err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	} else if !found {
		return nil, notFound("Booking", bookingID)
	}
	return s.find(ctx, "id ASC", "booking_id = ?", bookingID)
}

// PassengersByIDProof returns every passenger, across bookings, holding the id proof.
func (s *PassengerService) PassengersByIDProof(ctx context.Context, idProof string) ([]models.PassengerResponse, error) {
	return s.find(ctx, "id ASC", "id_proof = ?", strings.TrimSpace(idProof))
}

func (s *PassengerService) SearchPassengersByName(ctx context.Context, q string) ([]models.PassengerResponse, error) {
	return s.find(ctx, "name ASC, id ASC", "LOWER(name) LIKE ?", contains(q))
}

func (s *PassengerService) SearchPassengersByIDProof(ctx context.Context, q string) ([]models.PassengerResponse, error) {
	return s.find(ctx, "id ASC", "id_proof LIKE ?", contains(q))
}

func (s *PassengerService) PassengersByAgeRange(ctx context.Context, minAge, maxAge int) ([]models.PassengerResponse, error) {
	if minAge > maxAge {
		return nil, validationf("Minimum age must not exceed maximum age")
	}
	return s.find(ctx, "age ASC, id ASC", "age BETWEEN ? AND ?", minAge, maxAge)
}

func (s *PassengerService) PassengersByGender(ctx context.Context, gender string) ([]models.PassengerResponse, error) {
	g, ok := models.ParseGender(gender)
	if !ok {
		return nil, validationf("Invalid gender: %s", gender)
	}
	return s.find(ctx, "name ASC, id ASC", "gender = ?", g)
}

func (s *PassengerService) CountByGender(ctx context.Context, gender string) (int64, error) {
	g, ok := models.ParseGender(gender)
	if !ok {
		return 0, validationf("Invalid gender: %s", gender)
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Passenger{}).Where("gender = ?", g).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count passengers: %w", err)
	}
	return n, nil
}

func (s *PassengerService) CountByBooking(ctx context.Context, bookingID uint) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Passenger{}).Where("booking_id = ?", bookingID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count passengers: %w", err)
	}
	return n, nil
}

func (s *PassengerService) ExistsByIDProof(ctx context.Context, idProof string) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Passenger{}).Where("id_proof = ?", strings.TrimSpace(idProof)).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check id proof: %w", err)
	}
	return n > 0, nil
}

func (s *PassengerService) ExistsInBooking(ctx context.Context, bookingID uint, idProof string) (bool, error) {
	return idProofInBooking(s.DB.WithContext(ctx), bookingID, strings.TrimSpace(idProof), 0)
}

func (s *PassengerService) GetPassengerStatistics(ctx context.Context) (*models.PassengerStatistics, error) {
	db := s.DB.WithContext(ctx)

	var rows []struct {
		Gender models.Gender
		Count  int64
	}
	if err := db.Model(&models.Passenger{}).
		Select("gender, COUNT(*) AS count").
		Group("gender").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate passengers: %w", err)
	}

	stats := &models.PassengerStatistics{}
	for _, r := range rows {
		stats.TotalPassengers += r.Count
		switch r.Gender {
		case models.GenderMale:
			stats.MalePassengers = r.Count
		case models.GenderFemale:
			stats.FemalePassengers = r.Count
		case models.GenderOther:
			stats.OtherPassengers = r.Count
		}
	}
	if stats.TotalPassengers == 0 {
		return stats, nil
	}

	var avg sql.NullFloat64
	if err := db.Model(&models.Passenger{}).Select("AVG(age)").Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average passenger age: %w", err)
	}
	if avg.Valid {
		stats.AverageAge = math.Round(avg.Float64*100) / 100
	}

	utils.Log(ctx).WithFields(logrus.Fields{"total": stats.TotalPassengers}).Debug("passenger statistics computed")
	return stats, nil
}
