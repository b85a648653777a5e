package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"train-booking-backend/models"
)

const (
	orderBookingDateDesc = "bookings.booking_date DESC, bookings.id DESC"
	orderJourneyDateAsc  = "bookings.journey_date ASC, bookings.id ASC"
	orderJourneyDateDesc = "bookings.journey_date DESC, bookings.id DESC"
)

type scope = func(*gorm.DB) *gorm.DB

func joinTrains(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN trains ON trains.id = bookings.train_id")
}

func joinUsers(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN users ON users.id = bookings.user_id")
}

func contains(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (s *BookingService) findBookings(ctx context.Context, order string, scopes ...scope) ([]models.BookingResponse, error) {
	db := s.DB.WithContext(ctx)

	var bookings []models.Booking
	if err := withOrderedPassengers(db.Model(&models.Booking{})).
		Scopes(scopes...).
		Order(order).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return buildBookingResponses(db, bookings)
}

func (s *BookingService) countBookings(ctx context.Context, scopes ...scope) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Booking{}).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func where(query string, args ...any) scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

func parseStatus(status string) (models.BookingStatus, error) {
	st, ok := models.ParseBookingStatus(status)
	if !ok {
		return "", validationf("Invalid booking status: %s", status)
	}
	return st, nil
}

func parseDateArg(field, value string) (time.Time, error) {
	d, err := parseDate(value)
	if err != nil {
		return time.Time{}, validationf("Invalid %s %q: expected YYYY-MM-DD", field, value)
	}
	return d, nil
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDateArg("start date", from)
	if err != nil {
		return start, start, err
	}
	end, err := parseDateArg("end date", to)
	if err != nil {
		return start, end, err
	}
	if end.Before(start) {
		return start, end, validationf("End date must not be before start date")
	}
	return start, end, nil
}

func (s *BookingService) BookingsByUser(ctx context.Context, userID uint) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, where("bookings.user_id = ?", userID))
}

func (s *BookingService) BookingsByUserAndStatus(ctx context.Context, userID uint, status string) ([]models.BookingResponse, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderBookingDateDesc,
		where("bookings.user_id = ? AND bookings.status = ?", userID, st))
}

// UpcomingBookings lists a user's bookings travelling today or later, soonest first.
func (s *BookingService) UpcomingBookings(ctx context.Context, userID uint) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderJourneyDateAsc,
		where("bookings.user_id = ? AND bookings.journey_date >= ?", userID, datatypes.Date(s.today())))
}

// PastBookings lists a user's bookings whose journey date has passed, latest first.
func (s *BookingService) PastBookings(ctx context.Context, userID uint) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderJourneyDateDesc,
		where("bookings.user_id = ? AND bookings.journey_date < ?", userID, datatypes.Date(s.today())))
}

func (s *BookingService) BookingsByTrain(ctx context.Context, trainID uint) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, where("bookings.train_id = ?", trainID))
}

func (s *BookingService) BookingsByFareType(ctx context.Context, fareTypeID uint) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, where("bookings.fare_type_id = ?", fareTypeID))
}

func (s *BookingService) BookingsByStatus(ctx context.Context, status string) ([]models.BookingResponse, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderBookingDateDesc, where("bookings.status = ?", st))
}

func (s *BookingService) BookingsByJourneyDate(ctx context.Context, date string) ([]models.BookingResponse, error) {
	d, err := parseDateArg("journey date", date)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderBookingDateDesc, where("bookings.journey_date = ?", datatypes.Date(d)))
}

func (s *BookingService) BookingsByJourneyDateRange(ctx context.Context, from, to string) ([]models.BookingResponse, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderJourneyDateAsc,
		where("bookings.journey_date BETWEEN ? AND ?", datatypes.Date(start), datatypes.Date(end)))
}

// BookingsByBookingDateRange includes every booking made on either boundary day.
func (s *BookingService) BookingsByBookingDateRange(ctx context.Context, from, to string) ([]models.BookingResponse, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderBookingDateDesc,
		where("bookings.booking_date >= ? AND bookings.booking_date < ?", start, end.AddDate(0, 0, 1)))
}

func (s *BookingService) BookingsByUserAndJourneyDate(ctx context.Context, userID uint, date string) ([]models.BookingResponse, error) {
	d, err := parseDateArg("journey date", date)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderBookingDateDesc,
		where("bookings.user_id = ? AND bookings.journey_date = ?", userID, datatypes.Date(d)))
}

func (s *BookingService) BookingsByUserAndJourneyDateRange(ctx context.Context, userID uint, from, to string) ([]models.BookingResponse, error) {
	start, end, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.findBookings(ctx, orderJourneyDateAsc,
		where("bookings.user_id = ? AND bookings.journey_date BETWEEN ? AND ?", userID, datatypes.Date(start), datatypes.Date(end)))
}

// BookingsByRoute matches source and destination exactly, ignoring case.
func (s *BookingService) BookingsByRoute(ctx context.Context, source, destination string) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, joinTrains,
		where("LOWER(trains.source) = ? AND LOWER(trains.destination) = ?",
			strings.ToLower(strings.TrimSpace(source)), strings.ToLower(strings.TrimSpace(destination))))
}

func (s *BookingService) SearchBookingsBySource(ctx context.Context, q string) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, joinTrains, where("LOWER(trains.source) LIKE ?", contains(q)))
}

func (s *BookingService) SearchBookingsByDestination(ctx context.Context, q string) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, joinTrains, where("LOWER(trains.destination) LIKE ?", contains(q)))
}

func (s *BookingService) SearchBookingsByTrainName(ctx context.Context, q string) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, joinTrains, where("LOWER(trains.train_name) LIKE ?", contains(q)))
}

func (s *BookingService) SearchBookingsByUsername(ctx context.Context, q string) ([]models.BookingResponse, error) {
	return s.findBookings(ctx, orderBookingDateDesc, joinUsers, where("LOWER(users.username) LIKE ?", contains(q)))
}

// BookingSearchCriteria holds optional filters; zero values match everything.
type BookingSearchCriteria struct {
	UserID          uint   `json:"userId" form:"userId"`
	TrainID         uint   `json:"trainId" form:"trainId"`
	FareTypeID      uint   `json:"fareTypeId" form:"fareTypeId"`
	JourneyDateFrom string `json:"journeyDateFrom" form:"journeyDateFrom"`
	JourneyDateTo   string `json:"journeyDateTo" form:"journeyDateTo"`
	BookingDateFrom string `json:"bookingDateFrom" form:"bookingDateFrom"`
	BookingDateTo   string `json:"bookingDateTo" form:"bookingDateTo"`
	Status          string `json:"status" form:"status"`
	Source          string `json:"source" form:"source"`
	Destination     string `json:"destination" form:"destination"`
	TrainName       string `json:"trainName" form:"trainName"`
	Username        string `json:"username" form:"username"`
}

// SearchBookings applies the conjunction of every filter set in c.
func (s *BookingService) SearchBookings(ctx context.Context, c BookingSearchCriteria) ([]models.BookingResponse, error) {
	var scopes []scope

	if c.UserID != 0 {
		scopes = append(scopes, where("bookings.user_id = ?", c.UserID))
	}
	if c.TrainID != 0 {
		scopes = append(scopes, where("bookings.train_id = ?", c.TrainID))
	}
	if c.FareTypeID != 0 {
		scopes = append(scopes, where("bookings.fare_type_id = ?", c.FareTypeID))
	}
	if strings.TrimSpace(c.JourneyDateFrom) != "" {
		d, err := parseDateArg("journeyDateFrom", c.JourneyDateFrom)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, where("bookings.journey_date >= ?", datatypes.Date(d)))
	}
	if strings.TrimSpace(c.JourneyDateTo) != "" {
		d, err := parseDateArg("journeyDateTo", c.JourneyDateTo)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, where("bookings.journey_date <= ?", datatypes.Date(d)))
	}
	if strings.TrimSpace(c.BookingDateFrom) != "" {
		d, err := parseDateArg("bookingDateFrom", c.BookingDateFrom)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, where("bookings.booking_date >= ?", d))
	}
	if strings.TrimSpace(c.BookingDateTo) != "" {
		d, err := parseDateArg("bookingDateTo", c.BookingDateTo)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, where("bookings.booking_date < ?", d.AddDate(0, 0, 1)))
	}
	if strings.TrimSpace(c.Status) != "" {
		st, err := parseStatus(c.Status)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, where("bookings.status = ?", st))
	}

	needTrains := false
	if strings.TrimSpace(c.Source) != "" {
		needTrains = true
		scopes = append(scopes, where("LOWER(trains.source) LIKE ?", contains(c.Source)))
	}
	if strings.TrimSpace(c.Destination) != "" {
		needTrains = true
		scopes = append(scopes, where("LOWER(trains.destination) LIKE ?", contains(c.Destination)))
	}
	if strings.TrimSpace(c.TrainName) != "" {
		needTrains = true
		scopes = append(scopes, where("LOWER(trains.train_name) LIKE ?", contains(c.TrainName)))
	}
	if needTrains {
		scopes = append([]scope{joinTrains}, scopes...)
	}
	if strings.TrimSpace(c.Username) != "" {
		scopes = append([]scope{joinUsers}, scopes...)
		scopes = append(scopes, where("LOWER(users.username) LIKE ?", contains(c.Username)))
	}

	return s.findBookings(ctx, orderBookingDateDesc, scopes...)
}

func (s *BookingService) ExistsBooking(ctx context.Context, id uint) (bool, error) {
	n, err := s.countBookings(ctx, where("id = ?", id))
	return n > 0, err
}

// ExistsForUserTrainDate reports whether the user holds a CONFIRMED booking on
// the train for that journey date. Creation refuses a second one.
func (s *BookingService) ExistsForUserTrainDate(ctx context.Context, userID, trainID uint, date string) (bool, error) {
	d, err := parseDateArg("journey date", date)
	if err != nil {
		return false, err
	}
	n, err := s.countBookings(ctx, where("user_id = ? AND train_id = ? AND journey_date = ? AND status = ?",
		userID, trainID, datatypes.Date(d), models.BookingConfirmed))
	return n > 0, err
}

func (s *BookingService) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countBookings(ctx, where("user_id = ?", userID))
}

func (s *BookingService) CountByUserAndStatus(ctx context.Context, userID uint, status string) (int64, error) {
	st, err := parseStatus(status)
	if err != nil {
		return 0, err
	}
	return s.countBookings(ctx, where("user_id = ? AND status = ?", userID, st))
}

func (s *BookingService) CountByTrain(ctx context.Context, trainID uint) (int64, error) {
	return s.countBookings(ctx, where("train_id = ?", trainID))
}

func (s *BookingService) CountByJourneyDate(ctx context.Context, date string) (int64, error) {
	d, err := parseDateArg("journey date", date)
	if err != nil {
		return 0, err
	}
	return s.countBookings(ctx, where("journey_date = ?", datatypes.Date(d)))
}

func (s *BookingService) GetUserBookingStatistics(ctx context.Context, userID uint) (*models.BookingStatistics, error) {
	if _, found, err := findByID[models.User](s.DB.WithContext(ctx), userID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	} else if !found {
		return nil, notFound("User", userID)
	}

	today := datatypes.Date(s.today())
	stats := &models.BookingStatistics{UserID: userID}

	counts := []struct {
		dst  *int64
		cond scope
	}{
		{&stats.TotalBookings, where("user_id = ?", userID)},
		{&stats.ConfirmedBookings, where("user_id = ? AND status = ?", userID, models.BookingConfirmed)},
		{&stats.CancelledBookings, where("user_id = ? AND status = ?", userID, models.BookingCancelled)},
		{&stats.UpcomingBookings, where("user_id = ? AND journey_date >= ?", userID, today)},
		{&stats.PastBookings, where("user_id = ? AND journey_date < ?", userID, today)},
	}
	for _, c := range counts {
		n, err := s.countBookings(ctx, c.cond)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}
