package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type TrainStatus string

const (
	TrainActive   TrainStatus = "ACTIVE"
	TrainInactive TrainStatus = "INACTIVE"
)

func ParseTrainStatus(s string) (TrainStatus, bool) {
	switch TrainStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case TrainActive:
		return TrainActive, true
	case TrainInactive:
		return TrainInactive, true
	}
	return "", false
}

type DayOfWeek string

const (
	Monday    DayOfWeek = "MON"
	Tuesday   DayOfWeek = "TUE"
	Wednesday DayOfWeek = "WED"
	Thursday  DayOfWeek = "THU"
	Friday    DayOfWeek = "FRI"
	Saturday  DayOfWeek = "SAT"
	Sunday    DayOfWeek = "SUN"
)

var weekdays = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// ParseDayOfWeek accepts the three letter code or the full English day name.
func ParseDayOfWeek(s string) (DayOfWeek, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 3 {
		for wd, d := range weekdays {
			if strings.ToUpper(wd.String()) == s {
				return d, true
			}
		}
		return "", false
	}
	for _, d := range weekdays {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

func DayOfWeekFor(t time.Time) DayOfWeek {
	return weekdays[t.Weekday()]
}

type Train struct {
	ID            uint            `gorm:"primaryKey" json:"trainId"`
	TrainName     string          `gorm:"size:100;uniqueIndex;not null" json:"trainName"`
	Source        string          `gorm:"size:100;index;not null" json:"source"`
	Destination   string          `gorm:"size:100;index;not null" json:"destination"`
	DepartureTime datatypes.Time  `gorm:"not null" json:"departureTime"`
	ArrivalTime   datatypes.Time  `gorm:"not null" json:"arrivalTime"`
	Status        TrainStatus     `gorm:"size:10;not null;default:ACTIVE" json:"status"`
	Schedules     []TrainSchedule `gorm:"foreignKey:TrainID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"schedules,omitempty"`
	FareTypes     []FareType      `gorm:"foreignKey:TrainID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"fareTypes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type TrainSchedule struct {
	ID        uint      `gorm:"primaryKey" json:"scheduleId"`
	TrainID   uint      `gorm:"index;not null" json:"trainId"`
	DayOfWeek DayOfWeek `gorm:"size:3;not null" json:"dayOfWeek"`
}
