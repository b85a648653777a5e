package services

import (
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"train-booking-backend/models"
)

func withOrderedPassengers(db *gorm.DB) *gorm.DB {
	return db.Preload("Passengers", func(db *gorm.DB) *gorm.DB {
		return db.Order("passengers.id ASC")
	})
}

// buildBookingResponses resolves the user, train and fare type display fields
// of each booking with one lookup per referenced table.
func buildBookingResponses(db *gorm.DB, bookings []models.Booking) ([]models.BookingResponse, error) {
	out := make([]models.BookingResponse, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}

	userIDs := lo.Uniq(lo.Map(bookings, func(b models.Booking, _ int) uint { return b.UserID }))
	trainIDs := lo.Uniq(lo.Map(bookings, func(b models.Booking, _ int) uint { return b.TrainID }))
	fareIDs := lo.Uniq(lo.Map(bookings, func(b models.Booking, _ int) uint { return b.FareTypeID }))

	var users []models.User
	if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load booking users: %w", err)
	}
	var trains []models.Train
	if err := db.Where("id IN ?", trainIDs).Find(&trains).Error; err != nil {
		return nil, fmt.Errorf("failed to load booking trains: %w", err)
	}
	var fares []models.FareType
	if err := db.Where("id IN ?", fareIDs).Find(&fares).Error; err != nil {
		return nil, fmt.Errorf("failed to load booking fare types: %w", err)
	}

	usersByID := lo.KeyBy(users, func(u models.User) uint { return u.ID })
	trainsByID := lo.KeyBy(trains, func(t models.Train) uint { return t.ID })
	faresByID := lo.KeyBy(fares, func(f models.FareType) uint { return f.ID })

	for _, b := range bookings {
		resp := models.BookingResponse{
			BookingID:   b.ID,
			UserID:      b.UserID,
			TrainID:     b.TrainID,
			FareTypeID:  b.FareTypeID,
			JourneyDate: models.FormatDate(b.JourneyDate),
			BookingDate: b.BookingDate,
			TotalFare:   b.TotalFare,
			Status:      b.Status,
			Passengers:  lo.Map(b.Passengers, func(p models.Passenger, _ int) models.PassengerResponse { return models.NewPassengerResponse(p) }),
		}
		if u, ok := usersByID[b.UserID]; ok {
			resp.Username = u.Username
		}
		if t, ok := trainsByID[b.TrainID]; ok {
			resp.TrainName = t.TrainName
			resp.Source = t.Source
			resp.Destination = t.Destination
			resp.DepartureTime = t.DepartureTime.String()
			resp.ArrivalTime = t.ArrivalTime.String()
		}
		if f, ok := faresByID[b.FareTypeID]; ok {
			resp.ClassType = f.ClassType
			resp.Price = f.Price
		}
		out = append(out, resp)
	}
	return out, nil
}
