package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidWeekday indicates a weekday value outside SUNDAY..SATURDAY.
var ErrInvalidWeekday = errors.New("scheduler: invalid weekday")

// ErrInvalidTimeOfDay indicates a time value that is not HH:MM:SS.
var ErrInvalidTimeOfDay = errors.New("scheduler: invalid time of day")

// ErrInvalidDate indicates a date value that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("scheduler: invalid date")

const (
	timeOfDayLayout = "15:04:05"
	dateLayout      = "2006-01-02"
	secondsPerDay   = 24 * 60 * 60
)

// Weekday is the wire representation of a day of the week.
type Weekday string

const (
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

var weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Weekdays lists every weekday starting from Sunday.
func Weekdays() []Weekday {
	out := make([]Weekday, len(weekdays))
	copy(out, weekdays[:])
	return out
}

// ParseWeekday accepts a weekday name in any letter case.
func ParseWeekday(value string) (Weekday, error) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(value)))
	if !day.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, value)
	}
	return day, nil
}

// WeekdayOf converts a time.Weekday.
func WeekdayOf(day time.Weekday) Weekday {
	return weekdays[int(day)%7]
}

// Valid reports whether w is one of the seven known weekdays.
func (w Weekday) Valid() bool {
	for _, day := range weekdays {
		if day == w {
			return true
		}
	}
	return false
}

// TimeWeekday returns the time.Weekday equivalent. Invalid values map to Sunday.
func (w Weekday) TimeWeekday() time.Weekday {
	for i, day := range weekdays {
		if day == w {
			return time.Weekday(i)
		}
	}
	return time.Sunday
}

func (w Weekday) String() string {
	return string(w)
}

// TimeOfDay is a wall-clock time with second precision, stored as seconds since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an HH:MM:SS value.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse(timeOfDayLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return NewTimeOfDay(parsed.Hour(), parsed.Minute(), parsed.Second()), nil
}

// NewTimeOfDay builds a TimeOfDay from its clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// Clock returns the hour, minute and second components.
func (t TimeOfDay) Clock() (hour, minute, second int) {
	s := int(t) % secondsPerDay
	return s / 3600, (s % 3600) / 60, s % 60
}

// Seconds returns the number of seconds since midnight.
func (t TimeOfDay) Seconds() int {
	return int(t)
}

// OnReferenceDate places t on 1970-01-01 UTC.
func (t TimeOfDay) OnReferenceDate() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

func (t TimeOfDay) String() string {
	h, m, s := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open time-of-day range [Start, End).
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Valid reports whether Start precedes End.
func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Overlaps reports whether two half-open intervals share at least one instant.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

// Date is a civil calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(parsed), nil
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the day of the week the date falls on.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d.In(time.UTC).Weekday())
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.In(time.UTC).Compare(other.In(time.UTC))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

func (d Date) String() string {
	return d.In(time.UTC).Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive span of civil dates.
type DateRange struct {
	Start Date
	End   Date
}

// Role is the membership role of a person within an organization.
type Role string

const (
	RoleDancer  Role = "DANCER"
	RoleTeacher Role = "TEACHER"
)
