package designation

import (
	"fmt"
	"time"
)

type bookingKey struct {
	refereeID string
	date      string
	slot      int
}

// ConflictGuard is the per-run booking ledger. A (referee, date, slot) maps to at
// most one match at any time. It is not safe for concurrent use; a run owns its guard.
type ConflictGuard struct {
	// bookings maps a slot to the ID of the match holding it
	bookings map[bookingKey]string
}

// NewConflictGuard creates an empty ledger
func NewConflictGuard() *ConflictGuard {
	return &ConflictGuard{bookings: make(map[bookingKey]string)}
}

func keyFor(refereeID string, date time.Time, slot int) bookingKey {
	return bookingKey{refereeID: refereeID, date: date.Format(DateLayout), slot: slot}
}

// Book reserves the slot for the match. Booking the same match twice is a no-op;
// booking a different match in an occupied slot fails with ErrDoubleBooking.
func (g *ConflictGuard) Book(refereeID string, date time.Time, slot int, matchID string) error {
	key := keyFor(refereeID, date, slot)
	if existing, ok := g.bookings[key]; ok {
		if existing == matchID {
			return nil
		}
		return fmt.Errorf("%w: referee %s on %s slot %d held by match %s",
			ErrDoubleBooking, refereeID, key.date, slot, existing)
	}
	g.bookings[key] = matchID
	return nil
}

// Release frees the slot if it is held by the given match
func (g *ConflictGuard) Release(refereeID string, date time.Time, slot int, matchID string) bool {
	key := keyFor(refereeID, date, slot)
	existing, ok := g.bookings[key]
	if !ok || existing != matchID {
		return false
	}
	delete(g.bookings, key)
	return true
}

// IsBooked reports whether the referee holds any match in the slot
func (g *ConflictGuard) IsBooked(refereeID string, date time.Time, slot int) bool {
	_, ok := g.bookings[keyFor(refereeID, date, slot)]
	return ok
}

// holder returns the match holding the slot, if any
func (g *ConflictGuard) holder(refereeID string, date time.Time, slot int) (string, bool) {
	matchID, ok := g.bookings[keyFor(refereeID, date, slot)]
	return matchID, ok
}

// Len returns the number of active bookings
func (g *ConflictGuard) Len() int {
	return len(g.bookings)
}
