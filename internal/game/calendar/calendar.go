// Package calendar keeps the simulated world clock. Time only moves when the
// turn loop advances it; wall-clock time is never consulted.
package calendar

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"
	"time"
)

// Epoch is the in-game date and time at which every world is created.
var Epoch = time.Date(2055, time.June, 2, 6, 10, 0, 0, time.UTC)

// DefaultDayLength is the number of world seconds in an in-game day when the
// day is not shortened or stretched.
const DefaultDayLength int64 = 86400

const (
	secondsPerDay = int64(24 * time.Hour / time.Second)
	// maxCalendarDays bounds the day count fed to the calendar so the date
	// stays representable by time.Time.
	maxCalendarDays = int64(1) << 36
)

var (
	// ErrNegativeAdvance is returned when the clock is asked to move backwards.
	ErrNegativeAdvance = errors.New("calendar: cannot advance by a negative duration")
	// ErrClockOverflow is returned when an advance would exceed the largest
	// representable elapsed time.
	ErrClockOverflow = errors.New("calendar: clock would overflow")
	// ErrInvalidDayLength is returned for a day length that is not positive.
	ErrInvalidDayLength = errors.New("calendar: day length must be positive")
)

// PartOfDay is a named phase of the in-game day.
type PartOfDay string

const (
	Night     PartOfDay = "Night"
	Dawn      PartOfDay = "Dawn"
	Morning   PartOfDay = "Morning"
	Noon      PartOfDay = "Noon"
	Afternoon PartOfDay = "Afternoon"
	Dusk      PartOfDay = "Dusk"
	Evening   PartOfDay = "Evening"
	Midnight  PartOfDay = "Midnight"
)

var luminosity = map[PartOfDay]float64{
	Night:     0.4,
	Dawn:      0.6,
	Morning:   0.8,
	Noon:      1.0,
	Afternoon: 0.8,
	Dusk:      0.6,
	Evening:   0.4,
	Midnight:  0.2,
}

// Luminosity returns the ambient light of this part of day in [0, 1].
func (p PartOfDay) Luminosity() float64 {
	return luminosity[p]
}

// Hour is an hour of the day in [0, 23].
type Hour int

// PartOfDay returns the named phase this hour falls in.
//
// Precondition: h is in [0, 23].
// Postcondition: Returns one of the eight PartOfDay constants.
func (h Hour) PartOfDay() PartOfDay {
	switch {
	case h >= 1 && h <= 4:
		return Night
	case h >= 5 && h <= 6:
		return Dawn
	case h >= 7 && h <= 10:
		return Morning
	case h >= 11 && h <= 12:
		return Noon
	case h >= 13 && h <= 16:
		return Afternoon
	case h >= 17 && h <= 18:
		return Dusk
	case h >= 19 && h <= 22:
		return Evening
	default: // 23 and 0
		return Midnight
	}
}

// String returns the hour in "HH:00" format.
func (h Hour) String() string {
	return fmt.Sprintf("%02d:00", int(h))
}

// Clock counts whole seconds of world time since creation. An in-game day
// lasts dayLength world seconds; the hour of day is that day scaled to 24 hours.
// All methods are safe for concurrent use.
//
// Invariant: elapsed >= 0 and never decreases; dayLength > 0.
type Clock struct {
	mu        sync.Mutex
	elapsed   int64
	dayLength int64
}

// NewClock creates a Clock at world creation (elapsed 0).
//
// Postcondition: Returns an error wrapping ErrInvalidDayLength if dayLength <= 0.
func NewClock(dayLength int64) (*Clock, error) {
	return RestoreClock(0, dayLength)
}

// RestoreClock creates a Clock that has already run for elapsed seconds.
//
// Postcondition: Returns an error wrapping ErrNegativeAdvance if elapsed < 0,
// or ErrInvalidDayLength if dayLength <= 0.
func RestoreClock(elapsed, dayLength int64) (*Clock, error) {
	if dayLength <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDayLength, dayLength)
	}
	if elapsed < 0 {
		return nil, fmt.Errorf("%w: restored elapsed %d", ErrNegativeAdvance, elapsed)
	}
	return &Clock{elapsed: elapsed, dayLength: dayLength}, nil
}

// Elapsed returns the seconds of world time since creation.
func (c *Clock) Elapsed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// DayLength returns the world seconds in one in-game day.
func (c *Clock) DayLength() int64 {
	return c.dayLength
}

// Advance moves the clock forward by seconds. Zero is a no-op.
//
// Postcondition: Leaves the clock unchanged and returns an error wrapping
// ErrNegativeAdvance if seconds < 0, or ErrClockOverflow if elapsed would
// exceed math.MaxInt64.
func (c *Clock) Advance(seconds int64) error {
	if seconds < 0 {
		return fmt.Errorf("%w: %d seconds", ErrNegativeAdvance, seconds)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds > math.MaxInt64-c.elapsed {
		return fmt.Errorf("%w: %d + %d seconds", ErrClockOverflow, c.elapsed, seconds)
	}
	c.elapsed += seconds
	return nil
}

// position returns the whole days since the epoch's midnight, capped at
// maxCalendarDays, and the second of the current 24-hour day.
//
// Postcondition: 0 <= days <= maxCalendarDays+1 and 0 <= second < 86400.
func (c *Clock) position() (days, second int64) {
	elapsed := c.Elapsed()
	days = min(elapsed/c.dayLength, maxCalendarDays)
	rem := elapsed % c.dayLength
	// rem < dayLength, so the scaled quotient is below secondsPerDay and fits.
	hi, lo := bits.Mul64(uint64(rem), uint64(secondsPerDay))
	scaled, _ := bits.Div64(hi, lo, uint64(c.dayLength))

	second = int64(Epoch.Hour()*3600+Epoch.Minute()*60+Epoch.Second()) + int64(scaled)
	days += second / secondsPerDay
	return days, second % secondsPerDay
}

// Now returns the in-game calendar date. Dates past roughly 188 million
// years stop advancing; the time of day keeps cycling.
func (c *Clock) Now() time.Time {
	days, second := c.position()
	midnight := time.Date(Epoch.Year(), Epoch.Month(), Epoch.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, int(days)).Add(time.Duration(second) * time.Second)
}

// Hour returns the current hour of the in-game day.
func (c *Clock) Hour() Hour {
	_, second := c.position()
	return Hour(second / 3600)
}

// PartOfDay returns the current phase of the in-game day.
func (c *Clock) PartOfDay() PartOfDay {
	return c.Hour().PartOfDay()
}

// Luminosity returns the current ambient light in [0, 1].
func (c *Clock) Luminosity() float64 {
	return c.PartOfDay().Luminosity()
}
