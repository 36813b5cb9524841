package booking

import (
	"time"

	"mentorly/models"
)

var transitions = map[string][]string{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCompleted, models.BookingStatusCancelled, models.BookingStatusNoShow},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal is true for completed, cancelled and no-show.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Transition moves b to status `to` and appends the change to its history.
func Transition(b *models.Booking, to, actor, reason string, at time.Time) error {
	if !CanTransition(b.Status, to) {
		return &models.InvalidTransitionError{From: b.Status, To: to}
	}
	b.StatusHistory = append(b.StatusHistory, models.StatusChange{
		From:   b.Status,
		To:     to,
		Actor:  actor,
		Reason: reason,
		At:     at,
	})
	b.Status = to
	return nil
}
