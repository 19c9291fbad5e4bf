package designation

import (
	"fmt"
	"time"
)

// AvailabilityRecord is one referee's declared availability for one day
type AvailabilityRecord struct {
	RefereeID string
	Date      time.Time
	// Slots holds the state of slots 1..4 at indices 0..3
	Slots [SlotsPerDay]SlotState
	Note  string
}

type availabilityKey struct {
	refereeID string
	date      string
}

// AvailabilityIndex answers slot-state lookups for a designation run.
// It is built once and never mutated afterwards.
type AvailabilityIndex struct {
	records map[availabilityKey][SlotsPerDay]SlotState
}

// BuildAvailabilityIndex indexes the records by (referee, date).
// A second record for the same referee and date is an input invariant violation.
func BuildAvailabilityIndex(records []AvailabilityRecord) (*AvailabilityIndex, error) {
	index := &AvailabilityIndex{
		records: make(map[availabilityKey][SlotsPerDay]SlotState, len(records)),
	}

	for _, rec := range records {
		if rec.RefereeID == "" {
			return nil, fmt.Errorf("%w: availability record without referee", ErrInvalidInput)
		}
		for i, st := range rec.Slots {
			if st < Unavailable || st > AvailableWithoutTransport {
				return nil, fmt.Errorf("%w: referee %s has invalid state for slot %d on %s",
					ErrInvalidInput, rec.RefereeID, i+1, rec.Date.Format(DateLayout))
			}
		}

		key := availabilityKey{refereeID: rec.RefereeID, date: rec.Date.Format(DateLayout)}
		if _, exists := index.records[key]; exists {
			return nil, fmt.Errorf("%w: duplicate availability for referee %s on %s",
				ErrInvalidInput, rec.RefereeID, key.date)
		}
		index.records[key] = rec.Slots
	}

	return index, nil
}

// SlotState returns the referee's state for a slot (1..4) on a date.
// Referees without a record, and slots outside 1..4, are Unavailable.
func (ai *AvailabilityIndex) SlotState(refereeID string, date time.Time, slot int) SlotState {
	if ai == nil || slot < 1 || slot > SlotsPerDay {
		return Unavailable
	}
	slots, ok := ai.records[availabilityKey{refereeID: refereeID, date: date.Format(DateLayout)}]
	if !ok {
		return Unavailable
	}
	return slots[slot-1]
}

// Len returns the number of indexed records
func (ai *AvailabilityIndex) Len() int {
	if ai == nil {
		return 0
	}
	return len(ai.records)
}
