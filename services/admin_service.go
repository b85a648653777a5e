package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"train-booking-backend/models"
)

type DashboardService struct {
	DB *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db}
}

func (s *DashboardService) GetDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	db := s.DB.WithContext(ctx)
	out := &models.DashboardResponse{TotalSales: decimal.Zero}

	counts := []struct {
		dst   *int64
		model any
		query string
		args  []any
	}{
		{&out.TotalBookings, &models.Booking{}, "", nil},
		{&out.ConfirmedBookings, &models.Booking{}, "status = ?", []any{models.BookingConfirmed}},
		{&out.CancelledBookings, &models.Booking{}, "status = ?", []any{models.BookingCancelled}},
		{&out.TotalTrains, &models.Train{}, "", nil},
		{&out.ActiveTrains, &models.Train{}, "status = ?", []any{models.TrainActive}},
		{&out.InactiveTrains, &models.Train{}, "status = ?", []any{models.TrainInactive}},
		{&out.TotalUsers, &models.User{}, "role = ?", []any{models.RoleUser}},
		{&out.TotalPassengers, &models.Passenger{}, "", nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.query != "" {
			q = q.Where(c.query, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to build dashboard: %w", err)
		}
	}

	var sales decimal.NullDecimal
	if err := db.Model(&models.Booking{}).
		Select("SUM(total_fare)").
		Where("status = ?", models.BookingConfirmed).
		Scan(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}
	if sales.Valid {
		out.TotalSales = sales.Decimal.Round(2)
	}
	return out, nil
}
