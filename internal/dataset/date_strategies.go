package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseStrategy is one step of the date cascade. A strategy that cannot parse
// a value returns an error; it never aborts the cascade.
type ParseStrategy interface {
	Name() string
	Parse(s string) (time.Time, error)
}

// Years outside this range from the permissive pass are treated as misreads,
// e.g. "1.5" guessed as 0000-01-05
const (
	MinPlausibleYear = 1900
	MaxPlausibleYear = 2100
)

// PermissiveStrategy guesses the layout, month-first for ambiguous slashed dates
type PermissiveStrategy struct{}

func (PermissiveStrategy) Name() string { return "permissive" }

func (PermissiveStrategy) Parse(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if y := t.Year(); y < MinPlausibleYear || y > MaxPlausibleYear {
		return time.Time{}, fmt.Errorf("implausible year %d parsed from %q", y, s)
	}
	return t, nil
}

// LayoutStrategy parses one explicit layout
type LayoutStrategy struct {
	Label  string // human form, e.g. DD/MM/YYYY
	Layout string // Go reference layout
}

func (s LayoutStrategy) Name() string { return s.Label }

func (s LayoutStrategy) Parse(v string) (time.Time, error) {
	return time.ParseInLocation(s.Layout, strings.TrimSpace(v), time.UTC)
}

// Explicit layouts, tried in this order after the permissive pass
var (
	LayoutISODate     = LayoutStrategy{Label: "YYYY-MM-DD", Layout: "2006-01-02"}
	LayoutDayFirst    = LayoutStrategy{Label: "DD/MM/YYYY", Layout: "2/1/2006"}
	LayoutMonthFirst  = LayoutStrategy{Label: "MM/DD/YYYY", Layout: "1/2/2006"}
	LayoutISODateTime = LayoutStrategy{Label: "YYYY-MM-DD HH:MM:SS", Layout: "2006-01-02 15:04:05"}
	// vehicle introduction dates arrive as month/year; the day is taken as the 1st
	LayoutMonthYear = LayoutStrategy{Label: "M/YYYY", Layout: "1/2006"}
)

// DefaultDateStrategies returns the full cascade
func DefaultDateStrategies() []ParseStrategy {
	return []ParseStrategy{
		PermissiveStrategy{},
		LayoutISODate,
		LayoutDayFirst,
		LayoutMonthFirst,
		LayoutISODateTime,
		LayoutMonthYear,
	}
}

// safeParse runs one strategy, turning a panic inside a parser into a plain failure
func safeParse(s ParseStrategy, v string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked on %q: %v", s.Name(), v, r)
		}
	}()
	return s.Parse(v)
}
