package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PassengerResponse struct {
	PassengerID uint   `json:"passengerId"`
	BookingID   uint   `json:"bookingId"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	IDProof     string `json:"idProof"`
}

func NewPassengerResponse(p Passenger) PassengerResponse {
	return PassengerResponse{
		PassengerID: p.ID,
		BookingID:   p.BookingID,
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		IDProof:     p.IDProof,
	}
}

// BookingResponse is a booking joined with the display fields of its user,
// train and fare type.
type BookingResponse struct {
	BookingID     uint                `json:"bookingId"`
	UserID        uint                `json:"userId"`
	Username      string              `json:"username"`
	TrainID       uint                `json:"trainId"`
	TrainName     string              `json:"trainName"`
	Source        string              `json:"source"`
	Destination   string              `json:"destination"`
	DepartureTime string              `json:"departureTime"`
	ArrivalTime   string              `json:"arrivalTime"`
	FareTypeID    uint                `json:"fareTypeId"`
	ClassType     ClassType           `json:"classType"`
	Price         decimal.Decimal     `json:"price"`
	JourneyDate   string              `json:"journeyDate"`
	BookingDate   time.Time           `json:"bookingDate"`
	TotalFare     decimal.Decimal     `json:"totalFare"`
	Status        BookingStatus       `json:"status"`
	Passengers    []PassengerResponse `json:"passengers"`
}

type BookingStatistics struct {
	UserID            uint  `json:"userId"`
	TotalBookings     int64 `json:"totalBookings"`
	ConfirmedBookings int64 `json:"confirmedBookings"`
	CancelledBookings int64 `json:"cancelledBookings"`
	UpcomingBookings  int64 `json:"upcomingBookings"`
	PastBookings      int64 `json:"pastBookings"`
}

type PassengerStatistics struct {
	TotalPassengers  int64   `json:"totalPassengers"`
	MalePassengers   int64   `json:"malePassengers"`
	FemalePassengers int64   `json:"femalePassengers"`
	OtherPassengers  int64   `json:"otherPassengers"`
	AverageAge       float64 `json:"averageAge"`
}

type FareTypeResponse struct {
	FareTypeID     uint            `json:"fareTypeId"`
	TrainID        uint            `json:"trainId"`
	ClassType      ClassType       `json:"classType"`
	Price          decimal.Decimal `json:"price"`
	SeatsAvailable int             `json:"seatsAvailable"`
}

func NewFareTypeResponse(f FareType) FareTypeResponse {
	return FareTypeResponse{
		FareTypeID:     f.ID,
		TrainID:        f.TrainID,
		ClassType:      f.ClassType,
		Price:          f.Price,
		SeatsAvailable: f.SeatsAvailable,
	}
}

type TrainResponse struct {
	TrainID       uint               `json:"trainId"`
	TrainName     string             `json:"trainName"`
	Source        string             `json:"source"`
	Destination   string             `json:"destination"`
	DepartureTime string             `json:"departureTime"`
	ArrivalTime   string             `json:"arrivalTime"`
	Status        TrainStatus        `json:"status"`
	ScheduleDays  []DayOfWeek        `json:"scheduleDays"`
	FareTypes     []FareTypeResponse `json:"fareTypes"`
}

func NewTrainResponse(t Train) TrainResponse {
	resp := TrainResponse{
		TrainID:       t.ID,
		TrainName:     t.TrainName,
		Source:        t.Source,
		Destination:   t.Destination,
		DepartureTime: t.DepartureTime.String(),
		ArrivalTime:   t.ArrivalTime.String(),
		Status:        t.Status,
		ScheduleDays:  make([]DayOfWeek, 0, len(t.Schedules)),
		FareTypes:     make([]FareTypeResponse, 0, len(t.FareTypes)),
	}
	for _, s := range t.Schedules {
		resp.ScheduleDays = append(resp.ScheduleDays, s.DayOfWeek)
	}
	for _, f := range t.FareTypes {
		resp.FareTypes = append(resp.FareTypes, NewFareTypeResponse(f))
	}
	return resp
}

type StationList struct {
	SourceStations      []string `json:"sourceStations"`
	DestinationStations []string `json:"destinationStations"`
}

type UserResponse struct {
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type LoginResponse struct {
	Authenticated bool      `json:"authenticated"`
	Message       string    `json:"message"`
	UserID        uint      `json:"userId"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	LoginTime     time.Time `json:"loginTime"`
}

type DashboardResponse struct {
	TotalBookings     int64           `json:"totalBookings"`
	TotalSales        decimal.Decimal `json:"totalSales"`
	ConfirmedBookings int64           `json:"confirmedBookings"`
	CancelledBookings int64           `json:"cancelledBookings"`
	ActiveTrains      int64           `json:"activeTrains"`
	InactiveTrains    int64           `json:"inactiveTrains"`
	TotalTrains       int64           `json:"totalTrains"`
	TotalUsers        int64           `json:"totalUsers"`
	TotalPassengers   int64           `json:"totalPassengers"`
}
