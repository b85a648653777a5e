package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClassType is stored and serialized by its display name.
type ClassType string

const (
	ClassFirstAC      ClassType = "1AC"
	ClassSecondAC     ClassType = "2AC"
	ClassThirdAC      ClassType = "3AC"
	ClassSleeper      ClassType = "SL"
	ClassSleeperAC    ClassType = "Sleeper-AC"
	ClassSleeperNonAC ClassType = "Sleeper-NonAC"
	ClassSeat         ClassType = "Seat"
)

var classTypeNames = map[string]ClassType{
	"1ac":           ClassFirstAC,
	"_1ac":          ClassFirstAC,
	"2ac":           ClassSecondAC,
	"_2ac":          ClassSecondAC,
	"3ac":           ClassThirdAC,
	"_3ac":          ClassThirdAC,
	"sl":            ClassSleeper,
	"sleeper-ac":    ClassSleeperAC,
	"sleeper_ac":    ClassSleeperAC,
	"sleeper-nonac": ClassSleeperNonAC,
	"sleeper_nonac": ClassSleeperNonAC,
	"seat":          ClassSeat,
}

// ParseClassType accepts display names ("1AC", "Sleeper-AC") and the
// underscore spellings ("_1AC", "Sleeper_AC"), ignoring case.
func ParseClassType(s string) (ClassType, bool) {
	ct, ok := classTypeNames[strings.ToLower(strings.TrimSpace(s))]
	return ct, ok
}

func ClassTypes() []ClassType {
	return []ClassType{ClassFirstAC, ClassSecondAC, ClassThirdAC, ClassSleeper, ClassSleeperAC, ClassSleeperNonAC, ClassSeat}
}

type FareType struct {
	ID             uint            `gorm:"primaryKey" json:"fareTypeId"`
	TrainID        uint            `gorm:"index;not null" json:"trainId"`
	ClassType      ClassType       `gorm:"size:20;not null" json:"classType"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	SeatsAvailable int             `gorm:"not null;default:0" json:"seatsAvailable"`
	CreatedAt      time.Time       `json:"-"`
	UpdatedAt      time.Time       `json:"-"`
}
