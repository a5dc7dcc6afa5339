package models

import "fmt"

// DateLayout is the calendar date format of StartDate and EndDate.
const DateLayout = "2006-01-02"

// TripPreference is one saved set of trip parameters. A user's current
// preferences are the row with the latest CreatedAt.
type TripPreference struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	Destination string     `json:"destination" gorm:"type:varchar(255);not null"`
	StartDate   string     `json:"start_date" gorm:"type:varchar(10);not null"`
	EndDate     string     `json:"end_date" gorm:"type:varchar(10);not null"`
	Budget      float64    `json:"budget" gorm:"not null"`
	Activities  Activities `json:"activities" gorm:"type:text;not null"`
	GroupSize   int        `json:"group_size" gorm:"not null"`
	CreatedAt   Timestamp  `json:"created_at" gorm:"index;not null"`
}

// NaturalKey identifies the same preference row in both stores.
func (p TripPreference) NaturalKey() string {
	return fmt.Sprintf("%d_%s", p.UserID, p.CreatedAt)
}
