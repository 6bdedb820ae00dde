// Package schedule builds the 104-week decay table used to weight event
// results relative to a ranking's end week.
//
// The table is a 3x52 grid: the first index is the year offset (2 = the most
// recent year relative to the end week), the second is the zero-based week
// within that year. The 13 most recent weeks carry full weight; each of the
// following 91 weeks is worth 1/92 less than the previous one. Everything
// further back is zero. Weights are stored as integers scaled x10000.
package schedule

import "fmt"

const (
	// Years is the number of calendar years the grid spans.
	Years = 3
	// WeeksPerYear is the number of week columns per year.
	WeeksPerYear = 52

	// FullWeight is the weight of the most recent weeks, scaled x10000.
	FullWeight = 10000

	fullWeeks  = 13
	decayWeeks = 91
	decayDenom = 92
)

// Schedule is an immutable weight grid for one end week.
type Schedule struct {
	endWeek int
	grid    [Years][WeeksPerYear]int
}

// New builds the schedule ending at endWeek (1..52).
//
// Walks backward circularly from (yearOffset 2, endWeek-1): the first 13
// positions get FullWeight, then for i = 91 down to 1 the next position gets
// round-half-up(i * 10000 / 92). Positions never visited stay zero.
func New(endWeek int) (*Schedule, error) {
	if endWeek < 1 || endWeek > WeeksPerYear {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEndWeek, endWeek)
	}

	s := &Schedule{endWeek: endWeek}
	year, week := Years-1, endWeek-1
	for i := 0; i < fullWeeks; i++ {
		s.grid[year][week] = FullWeight
		year, week = stepBack(year, week)
	}
	for i := decayWeeks; i >= 1; i-- {
		s.grid[year][week] = (i*FullWeight + decayDenom/2) / decayDenom
		year, week = stepBack(year, week)
	}
	return s, nil
}

// stepBack moves one week into the past, wrapping week 0 to week 51 of the
// prior year offset. With a valid end week the walk never leaves the grid.
func stepBack(year, week int) (int, int) {
	week--
	if week < 0 {
		week = WeeksPerYear - 1
		year--
	}
	return year, week
}

// EndWeek returns the week the schedule ends at.
func (s *Schedule) EndWeek() int {
	return s.endWeek
}

// Weight returns the cell at (yearOffset, weekIndex), or 0 for coordinates
// outside the grid.
func (s *Schedule) Weight(yearOffset, weekIndex int) int {
	if yearOffset < 0 || yearOffset >= Years || weekIndex < 0 || weekIndex >= WeeksPerYear {
		return 0
	}
	return s.grid[yearOffset][weekIndex]
}

// WeightFor resolves the weight of an event dated (eventYear, eventWeek)
// against a ranking ending in endYear. Events outside the covered years or
// with a malformed week resolve to 0.
func (s *Schedule) WeightFor(eventYear, eventWeek, endYear int) int {
	if eventWeek < 1 || eventWeek > WeeksPerYear {
		return 0
	}
	yearOffset := Years - 1 - (endYear - eventYear)
	return s.Weight(yearOffset, eventWeek-1)
}
