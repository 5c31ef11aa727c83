package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

// Appointment is a dated calendar entry with no monetary value. It shares
// the agenda view with obligations due on the same day.
type Appointment struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	GroupID   *uuid.UUID
	Title     string
	Notes     string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (a *Appointment) Validate() error {
	if a.Title == "" {
		return errors.New("title is required")
	}

	if a.Date.IsZero() {
		return errors.New("date is required")
	}

	return nil
}
