// README: Holiday calendar and day classification used by date-sensitive rates.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the key format used for holiday membership and selection dates.
const DateLayout = "2006-01-02"

type DayClass string

const (
	Weekday DayClass = "weekday"
	Friday  DayClass = "friday"
	Weekend DayClass = "weekend"
	Holiday DayClass = "holiday"
)

// HolidayCalendar is an immutable set of holiday dates keyed by yyyy-MM-dd.
type HolidayCalendar struct {
	days map[string]struct{}
}

func NewHolidayCalendar(dates ...string) (HolidayCalendar, error) {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return HolidayCalendar{}, fmt.Errorf("holiday %q: %w", d, err)
		}
		days[d] = struct{}{}
	}
	return HolidayCalendar{days: days}, nil
}

// MustHolidayCalendar is NewHolidayCalendar for static lists known to be valid.
func MustHolidayCalendar(dates ...string) HolidayCalendar {
	cal, err := NewHolidayCalendar(dates...)
	if err != nil {
		panic(err)
	}
	return cal
}

func (c HolidayCalendar) Contains(key string) bool {
	_, ok := c.days[key]
	return ok
}

func (c HolidayCalendar) Len() int {
	return len(c.days)
}

type Classifier struct {
	cal HolidayCalendar
}

func NewClassifier(cal HolidayCalendar) *Classifier {
	return &Classifier{cal: cal}
}

// Key formats t by its own calendar fields; no zone conversion happens.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

func (c *Classifier) IsHoliday(t time.Time) bool {
	return c.cal.Contains(Key(t))
}

// Classify applies Holiday > Friday > Weekend > Weekday.
func (c *Classifier) Classify(t time.Time) DayClass {
	if c.IsHoliday(t) {
		return Holiday
	}
	switch t.Weekday() {
	case time.Friday:
		return Friday
	case time.Saturday, time.Sunday:
		return Weekend
	default:
		return Weekday
	}
}
