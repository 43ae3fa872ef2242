// Package hours evaluates the business-hours login policy in the company's
// local timezone.
package hours

import (
	"fmt"
	"time"

	_ "time/tzdata"
)

// DefaultTimezone is the operating business's local timezone.
const DefaultTimezone = "America/Sao_Paulo"

// Business hours run Monday through Friday, 08:00-17:59 inclusive.
const (
	openHour  = 8
	closeHour = 18
)

// Checker answers business-hours questions against an injectable clock.
type Checker struct {
	loc   *time.Location
	nowFn func() time.Time
}

// NewChecker constructs a Checker for the timezone. nowFn defaults to
// time.Now.
func NewChecker(timezone string, nowFn func() time.Time) (*Checker, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", timezone, err)
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Checker{loc: loc, nowFn: nowFn}, nil
}

// Now returns the current time in the business timezone.
func (c *Checker) Now() time.Time {
	return c.nowFn().In(c.loc)
}

// InBusinessHours reports whether the current local time falls Monday-Friday
// between 08:00 and 17:59.
func (c *Checker) InBusinessHours() bool {
	now := c.Now()
	day := now.Weekday()
	if day < time.Monday || day > time.Friday {
		return false
	}
	hour := now.Hour()
	return hour >= openHour && hour < closeHour
}

// Snapshot captures the current policy evaluation for the introspection
// endpoint.
type Snapshot struct {
	InBusinessHours bool   `json:"isBusinessHours"`
	CurrentTime     string `json:"currentTime"`
	Day             int    `json:"day"`
	Hour            int    `json:"hour"`
}

// Snapshot returns the current business-hours evaluation.
func (c *Checker) Snapshot() Snapshot {
	now := c.Now()
	return Snapshot{
		InBusinessHours: c.InBusinessHours(),
		CurrentTime:     now.Format("02/01/2006 15:04:05"),
		Day:             int(now.Weekday()),
		Hour:            now.Hour(),
	}
}
