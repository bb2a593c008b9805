package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrYearInFuture = errors.New("year cannot be greater than the current year")

// ValidateYear rejects years after the current calendar year. The current
// year itself is allowed.
func ValidateYear(year int) error {
	current := time.Now().Year()
	if year > current {
		return fmt.Errorf("%w (%d)", ErrYearInFuture, current)
	}
	return nil
}

type Title struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64    `json:"-" gorm:"index"`
	CreatedAt   time.Time `json:"-" gorm:"autoCreateTime"`

	// Rating is the query-time average of review scores, never stored.
	// Read-only so AutoMigrate does not create a column for it.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	// Associations. A deleted category leaves the title in place with a
	// null category; deleting a title takes its reviews with it.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
