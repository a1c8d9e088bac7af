package recurrence

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/studio-scheduler/internal/scheduler"
)

// ErrInvalidTimezone indicates the timezone is missing or not a known IANA zone.
var ErrInvalidTimezone = errors.New("recurrence: invalid timezone")

// ErrInvalidDateRange indicates the range ends before it starts.
var ErrInvalidDateRange = errors.New("recurrence: end date must not precede start date")

// ErrInvalidTimeRange indicates an occurrence whose start is not before its end.
var ErrInvalidTimeRange = errors.New("recurrence: occurrence start must be before end")

// Instance is one dated, UTC-stamped slot generated from a weekly occurrence.
type Instance struct {
	OccurrenceID string    `json:"occurrenceId" yaml:"occurrenceId"`
	RoomID       string    `json:"roomId" yaml:"roomId"`
	Start        time.Time `json:"start" yaml:"start"`
	End          time.Time `json:"end" yaml:"end"`
}

// Engine expands weekly occurrences into concrete instances.
type Engine struct {
	locations sync.Map
}

// NewEngine constructs an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// LoadLocation resolves an IANA zone name. Empty names and "Local" are rejected
// so that results never depend on the host's zone.
func (e *Engine) LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	if e != nil {
		if cached, ok := e.locations.Load(name); ok {
			return cached.(*time.Location), nil
		}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	if e != nil {
		e.locations.Store(name, loc)
	}
	return loc, nil
}

// Expand returns a lazy sequence of instances for every occurrence within the
// inclusive date range. Instances are grouped by occurrence in input order and
// ascend by date within each group. The sequence can be ranged over any number
// of times and yields the same instances each time.
//
// Wall-clock times are converted to UTC using the zone offset in effect on each
// individual date, so instances keep their local time across DST transitions.
func (e *Engine) Expand(occurrences []scheduler.Occurrence, dates scheduler.DateRange, timezone string) (iter.Seq[Instance], error) {
	loc, err := e.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	if dates.End.Before(dates.Start) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidDateRange, dates.Start, dates.End)
	}

	rules := make([]*rrule.RRule, len(occurrences))
	for i, occ := range occurrences {
		if !occ.Interval().Valid() {
			return nil, fmt.Errorf("%w: %s %s-%s", ErrInvalidTimeRange, occ.Weekday, occ.Start, occ.End)
		}
		rule, err := weeklyRule(occ.Weekday, dates)
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}

	return func(yield func(Instance) bool) {
		for i, occ := range occurrences {
			next := rules[i].Iterator()
			for day, ok := next(); ok; day, ok = next() {
				if !yield(instanceOn(scheduler.DateOf(day), occ, loc)) {
					return
				}
			}
		}
	}, nil
}

// weeklyRule steps through every date in the range that falls on day. Dates are
// anchored at UTC midnight and carry no time-of-day information.
func weeklyRule(day scheduler.Weekday, dates scheduler.DateRange) (*rrule.RRule, error) {
	weekday, ok := rruleWeekdays[day]
	if !ok {
		return nil, fmt.Errorf("%w: %q", scheduler.ErrInvalidWeekday, day)
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dates.Start.In(time.UTC),
		Until:     dates.End.In(time.UTC),
		Byweekday: []rrule.Weekday{weekday},
	})
	if err != nil {
		return nil, fmt.Errorf("recurrence: build weekly rule: %w", err)
	}
	return rule, nil
}

func instanceOn(date scheduler.Date, occ scheduler.Occurrence, loc *time.Location) Instance {
	return Instance{
		OccurrenceID: occ.ID,
		RoomID:       occ.RoomID,
		Start:        combineDateTime(date, occ.Start, loc),
		End:          combineDateTime(date, occ.End, loc),
	}
}

// combineDateTime interprets the wall-clock time on date in loc. time.Date reads
// a time inside a DST gap with the offset in force after the transition, so
// 02:00 on a spring-forward night lands on 01:00 standard time and an
// occurrence starting there keeps its length.
func combineDateTime(date scheduler.Date, clock scheduler.TimeOfDay, loc *time.Location) time.Time {
	h, m, s := clock.Clock()
	return time.Date(date.Year, date.Month, date.Day, h, m, s, 0, loc).UTC()
}

var rruleWeekdays = map[scheduler.Weekday]rrule.Weekday{
	scheduler.Sunday:    rrule.SU,
	scheduler.Monday:    rrule.MO,
	scheduler.Tuesday:   rrule.TU,
	scheduler.Wednesday: rrule.WE,
	scheduler.Thursday:  rrule.TH,
	scheduler.Friday:    rrule.FR,
	scheduler.Saturday:  rrule.SA,
}
