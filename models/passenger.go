package models

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	case GenderOther:
		return GenderOther, true
	}
	return "", false
}

type Passenger struct {
	ID        uint      `gorm:"primaryKey" json:"passengerId"`
	BookingID uint      `gorm:"index;not null" json:"bookingId"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	Gender    Gender    `gorm:"size:10;not null" json:"gender"`
	IDProof   string    `gorm:"column:id_proof;size:12;index;not null" json:"idProof"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
