package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DateLayout              = "2006-01-02"
	MaxPassengersPerBooking = 10
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case BookingConfirmed:
		return BookingConfirmed, true
	case BookingCancelled:
		return BookingCancelled, true
	}
	return "", false
}

// Booking references its user, train and fare type by id only; the owning
// catalogs are looked up explicitly when a view is built.
type Booking struct {
	ID          uint            `gorm:"primaryKey" json:"bookingId"`
	UserID      uint            `gorm:"index;not null" json:"userId"`
	TrainID     uint            `gorm:"index;not null" json:"trainId"`
	FareTypeID  uint            `gorm:"index;not null" json:"fareTypeId"`
	JourneyDate datatypes.Date  `gorm:"index;not null" json:"journeyDate"`
	BookingDate time.Time       `gorm:"index;not null" json:"bookingDate"`
	TotalFare   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalFare"`
	Status      BookingStatus   `gorm:"size:10;index;not null" json:"status"`
	Passengers  []Passenger     `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"passengers"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}
