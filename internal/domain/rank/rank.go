// Package rank turns final aggregates into a tie-aware, fixed-width ranking
// table.
//
// The weighted sum (scale x1_000_000) is divided by ten times the clamped
// event count, truncating to five decimal digits, then rounded half-up to
// four. Competitors whose rounded average is not positive are excluded.
// Places use competition ranking: a run of k tied entries shares a place and
// the next distinct entry skips ahead by k.
package rank

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rollrank/rollrank/internal/domain/model"
)

const (
	// Divisor bounds: fewer than 40 events still divide by 40, more than 52
	// never divide by more than 52.
	minDivisorEvents = 40
	maxDivisorEvents = 52

	// divisorScale drops the weighted sum from x1_000_000 to x100_000,
	// leaving one digit beyond the displayed four for rounding.
	divisorScale = 10

	// fractionDigits is how many digits sit right of the decimal point.
	fractionDigits = 4
	// minDigits pads the rounded average so at least one digit precedes the
	// decimal point.
	minDigits = 5

	// alignPad: averages at or below this value get a leading space so the
	// column lines up with five-digit integer parts.
	alignPad = 1_000_000
)

// Row is one rendered ranking position. Average carries scale x10_000.
type Row struct {
	Place        int
	CompetitorID int
	Name         string
	Average      int64
}

// Build normalizes, filters, sorts and places the given aggregates.
func Build(aggs []model.Aggregate) []Row {
	rows := make([]Row, 0, len(aggs))
	for _, a := range aggs {
		if a.Weighted <= 0 {
			continue
		}
		divisor := int64(clamp(a.Count, minDivisorEvents, maxDivisorEvents) * divisorScale)
		average5 := a.Weighted / divisor
		rounded := (average5 + 5) / 10
		if rounded <= 0 {
			continue
		}
		rows = append(rows, Row{
			CompetitorID: a.CompetitorID,
			Name:         a.Name,
			Average:      rounded,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Average != rows[j].Average {
			return rows[i].Average > rows[j].Average
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].CompetitorID < rows[j].CompetitorID
	})

	for i := range rows {
		if i > 0 && rows[i].Average == rows[i-1].Average {
			rows[i].Place = rows[i-1].Place
			continue
		}
		rows[i].Place = i + 1
	}
	return rows
}

// FormatAverage renders a rounded average as an integer part plus exactly
// four fractional digits, left-padding to at least five digits overall.
func FormatAverage(average int64) string {
	s := strconv.FormatInt(average, 10)
	if len(s) < minDigits {
		s = strings.Repeat("0", minDigits-len(s)) + s
	}
	cut := len(s) - fractionDigits
	return s[:cut] + "." + s[cut:]
}

// Render writes the table as tab-aligned fixed-width rows: place with its
// separator, name padded against the longest name in the set, then the
// formatted average.
func Render(w io.Writer, rows []Row) error {
	maxName := 0
	for _, r := range rows {
		if len(r.Name) > maxName {
			maxName = len(r.Name)
		}
	}

	for _, r := range rows {
		place := strconv.Itoa(r.Place) + "."
		if r.Place < 100 {
			place += "\t\t"
		} else {
			place += "\t"
		}

		name := r.Name + strings.Repeat("\t", (maxName-len(r.Name)+5)/4)

		average := FormatAverage(r.Average)
		if r.Average <= alignPad {
			average = " " + average
		}

		if _, err := fmt.Fprintln(w, place+name+average); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
