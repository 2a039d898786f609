package domain

import (
	"fmt"
	"time"
)

// Venue holds the physical seats.
type Venue struct {
	Entity
	Name string
}

// Event is the ticketed occasion the engine sells inventory for. Ticket-type
// structure (windows, limits) is only modifiable while the event is
// unpublished.
type Event struct {
	Entity
	VenueID   int64
	Title     string
	Starts    time.Time
	Ends      time.Time
	Published bool
}

func NewEvent(venueID int64, title string, starts, ends, now time.Time) (*Event, error) {
	if venueID <= 0 || title == "" {
		return nil, fmt.Errorf("event %q: %w", title, ErrInvalidInput)
	}
	if !ends.After(starts) {
		return nil, fmt.Errorf("event %q ends before it starts: %w", title, ErrInvalidInput)
	}
	return &Event{
		Entity:  Entity{CreatedAt: now, UpdatedAt: now, Version: 1},
		VenueID: venueID,
		Title:   title,
		Starts:  starts,
		Ends:    ends,
	}, nil
}

func (e *Event) Publish(now time.Time) {
	if e.Published {
		return
	}
	e.Published = true
	e.Touch(now)
}
