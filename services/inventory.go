package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"train-booking-backend/metrics"
	"train-booking-backend/models"
)

// reserveSeats takes n seats from a fare type in a single conditional UPDATE.
// It reports false, leaving the counter untouched, when fewer than n remain.
func reserveSeats(tx *gorm.DB, fareTypeID uint, n int) (bool, error) {
	res := tx.Model(&models.FareType{}).
		Where("id = ? AND seats_available >= ?", fareTypeID, n).
		UpdateColumn("seats_available", gorm.Expr("seats_available - ?", n))
	if res.Error != nil {
		return false, fmt.Errorf("failed to reserve seats: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	metrics.SeatsReserved.Add(float64(n))
	return true, nil
}

func releaseSeats(tx *gorm.DB, fareTypeID uint, n int) error {
	if n <= 0 {
		return nil
	}
	res := tx.Model(&models.FareType{}).
		Where("id = ?", fareTypeID).
		UpdateColumn("seats_available", gorm.Expr("seats_available + ?", n))
	if res.Error != nil {
		return fmt.Errorf("failed to release seats: %w", res.Error)
	}
	metrics.SeatsReleased.Add(float64(n))
	return nil
}

func seatsAvailable(tx *gorm.DB, fareTypeID uint) (int, error) {
	var seats int
	err := tx.Model(&models.FareType{}).
		Select("seats_available").
		Where("id = ?", fareTypeID).
		Scan(&seats).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read seats: %w", err)
	}
	return seats, nil
}

// findByID loads a row by primary key, reporting a missing row as found=false.
func findByID[T any](tx *gorm.DB, id uint) (T, bool, error) {
	var out T
	err := tx.First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}
