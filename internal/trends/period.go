package trends

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodToday    Period = "today"
	PeriodLast7    Period = "last7"
	PeriodLast30   Period = "last30"
	PeriodLast90   Period = "last90"
	PeriodLastYear Period = "lastYear"
	// PeriodAll is capped at one year.
	PeriodAll Period = "all"
)

var periodDays = map[Period]int{
	PeriodToday:    1,
	PeriodLast7:    7,
	PeriodLast30:   30,
	PeriodLast90:   90,
	PeriodLastYear: 365,
	PeriodAll:      365,
}

// Periods lists the recognized selectors, shortest first.
func Periods() []Period {
	return []Period{PeriodToday, PeriodLast7, PeriodLast30, PeriodLast90, PeriodLastYear, PeriodAll}
}

func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// Days returns how many calendar days the period covers, or 0 for an unknown period.
func (p Period) Days() int {
	return periodDays[p]
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidRange, end, start)
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Days() int {
	return r.End.DaysSince(r.Start) + 1
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) Dates() []Date {
	dates := make([]Date, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// ResolveRange anchors the period to the day now falls on in loc.
func ResolveRange(p Period, now time.Time, loc *time.Location) (DateRange, error) {
	days := p.Days()
	if days == 0 {
		return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, p)
	}
	end := DateOf(now, loc)
	return DateRange{
		Start: end.AddDays(-(days - 1)),
		End:   end,
	}, nil
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Used in tests and replays.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// Resolver resolves periods against an injected clock in a fixed reference timezone.
type Resolver struct {
	clock    Clock
	location *time.Location
}

func NewResolver(clock Clock, location *time.Location) *Resolver {
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Resolver{
		clock:    clock,
		location: location,
	}
}

func (r *Resolver) Resolve(p Period) (DateRange, error) {
	return ResolveRange(p, r.clock.Now(), r.location)
}

func (r *Resolver) Location() *time.Location {
	return r.location
}
