package config

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"train-booking-backend/models"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@trainbooking.local"
	defaultAdminPassword = "Admin@123"
)

// SeedDatabase inserts a default admin and a small catalog when the tables are empty.
func SeedDatabase(db *gorm.DB) {
	// ---------------- Users ----------------
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).Warn("failed to hash default admin password")
		} else {
			admin := models.User{
				Username: defaultAdminUsername,
				Email:    defaultAdminEmail,
				Password: string(hash),
				Role:     models.RoleAdmin,
			}
			if err := db.Create(&admin).Error; err != nil {
				logrus.WithError(err).Warn("failed to create default admin")
			} else {
				logrus.Info("default admin seeded")
			}
		}
	}

	// ---------------- Trains ----------------
	var trainCount int64
	db.Model(&models.Train{}).Count(&trainCount)
	if trainCount > 0 {
		return
	}

	everyDay := []models.DayOfWeek{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday, models.Sunday}
	days := func(ds ...models.DayOfWeek) []models.TrainSchedule {
		out := make([]models.TrainSchedule, 0, len(ds))
		for _, d := range ds {
			out = append(out, models.TrainSchedule{DayOfWeek: d})
		}
		return out
	}
	fare := func(ct models.ClassType, price string, seats int) models.FareType {
		return models.FareType{ClassType: ct, Price: decimal.RequireFromString(price), SeatsAvailable: seats}
	}

	trains := []models.Train{
		{
			TrainName:     "Rajdhani Express",
			Source:        "New Delhi",
			Destination:   "Mumbai Central",
			DepartureTime: datatypes.NewTime(16, 35, 0, 0),
			ArrivalTime:   datatypes.NewTime(23, 55, 0, 0),
			Status:        models.TrainActive,
			Schedules:     days(everyDay...),
			FareTypes: []models.FareType{
				fare(models.ClassFirstAC, "4755.00", 24),
				fare(models.ClassSecondAC, "2870.00", 48),
				fare(models.ClassThirdAC, "2045.00", 64),
			},
		},
		{
			TrainName:     "Shatabdi Express",
			Source:        "Chennai Central",
			Destination:   "Bengaluru",
			DepartureTime: datatypes.NewTime(6, 0, 0, 0),
			ArrivalTime:   datatypes.NewTime(11, 0, 0, 0),
			Status:        models.TrainActive,
			Schedules:     days(models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday),
			FareTypes: []models.FareType{
				fare(models.ClassSeat, "845.00", 78),
				fare(models.ClassFirstAC, "1745.00", 40),
			},
		},
		{
			TrainName:     "Duronto Express",
			Source:        "Howrah",
			Destination:   "New Delhi",
			DepartureTime: datatypes.NewTime(8, 15, 0, 0),
			ArrivalTime:   datatypes.NewTime(21, 50, 0, 0),
			Status:        models.TrainActive,
			Schedules:     days(models.Tuesday, models.Friday),
			FareTypes: []models.FareType{
				fare(models.ClassSleeper, "795.00", 72),
				fare(models.ClassSleeperAC, "1490.00", 64),
				fare(models.ClassSleeperNonAC, "690.00", 80),
			},
		},
	}
	if err := db.Create(&trains).Error; err != nil {
		logrus.WithError(err).Warn("failed to seed trains")
		return
	}
	logrus.WithField("count", len(trains)).Info("trains seeded")
}
