package settings

import (
	"errors"
	"fmt"
	"log"
	"strconv"
)

const (
	ForecastDaysKey     = "weatherdock/forecast_days"
	DefaultForecastDays = 1
	MinForecastDays     = 1
	MaxForecastDays     = 7
)

var ErrOutOfRange = fmt.Errorf("forecast days must be between %d and %d", MinForecastDays, MaxForecastDays)

// Preferences reads and writes the plugin's preference through a Store.
type Preferences struct {
	store Store
}

// NewPreferences wraps store.
func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// ForecastDays returns the stored day count, or the default when it is unset,
// unreadable or out of range.
func (p *Preferences) ForecastDays() int {
	v, err := p.store.Get(ForecastDaysKey)
	if errors.Is(err, ErrNotFound) {
		return DefaultForecastDays
	}
	if err != nil {
		log.Printf("WARN: reading %s: %v", ForecastDaysKey, err)
		return DefaultForecastDays
	}

	days, err := strconv.Atoi(v)
	if err != nil || days < MinForecastDays || days > MaxForecastDays {
		log.Printf("WARN: ignoring invalid %s value %q", ForecastDaysKey, v)
		return DefaultForecastDays
	}
	return days
}

// SetForecastDays stores days after checking its range.
func (p *Preferences) SetForecastDays(days int) error {
	if days < MinForecastDays || days > MaxForecastDays {
		return fmt.Errorf("%w: got %d", ErrOutOfRange, days)
	}
	return p.store.Set(ForecastDaysKey, strconv.Itoa(days))
}
