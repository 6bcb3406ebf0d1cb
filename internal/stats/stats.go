// Package stats derives per-period shift counts and shift-combination
// frequencies from a calendar's assignments. It never mutates its input.
package stats

import (
	"sort"
	"strings"
	"time"

	"shiftcal/internal/datekey"
	"shiftcal/internal/model"
)

// unknownAbbreviation stands in for ids missing from the registry in
// combination keys.
const unknownAbbreviation = "?"

// Period selects a month, or a whole year when Month is zero.
type Period struct {
	Year  int
	Month time.Month
}

// Annual reports whether p covers a whole year.
func (p Period) Annual() bool { return p.Month == 0 }

func (p Period) prefix() string {
	if p.Annual() {
		return datekey.YearPrefix(p.Year)
	}
	return datekey.MonthPrefix(p.Year, p.Month)
}

// ShiftCount is the number of slots a shift occupied in the period.
type ShiftCount struct {
	ShiftID      string
	Name         string
	Abbreviation string
	Count        int
}

// Combination is how many days carried a given set of shifts.
type Combination struct {
	Key   string // abbreviations joined with "/", in slot order
	Count int
}

type Summary struct {
	Period       Period
	Counts       []ShiftCount // registry order
	WorkedDays   int
	Combinations []Combination // monthly periods only, most frequent first
}

// Worked returns only the shifts with a non-zero count.
func (s Summary) Worked() []ShiftCount {
	out := make([]ShiftCount, 0, len(s.Counts))
	for _, c := range s.Counts {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the count for shiftID, or zero.
func (s Summary) Count(shiftID string) int {
	for _, c := range s.Counts {
		if c.ShiftID == shiftID {
			return c.Count
		}
	}
	return 0
}

// Compute aggregates cal's assignments in the period. Only shifts present
// in the registry are counted, and a day is worked when at least one of its
// slots holds a counted shift.
func Compute(cal *model.Calendar, shifts []model.Shift, p Period) Summary {
	sum := Summary{Period: p, Counts: make([]ShiftCount, len(shifts))}
	index := make(map[string]int, len(shifts))
	for i, sh := range shifts {
		index[sh.ID] = i
		sum.Counts[i] = ShiftCount{ShiftID: sh.ID, Name: sh.Name, Abbreviation: sh.Abbreviation}
	}
	if cal == nil {
		return sum
	}

	prefix := p.prefix()
	combos := map[string]int{}
	for day, slots := range cal.AssignedShifts {
		if !strings.HasPrefix(day, prefix) {
			continue
		}
		worked := false
		abbrs := make([]string, 0, model.SlotCount)
		for _, id := range slots.Filled() {
			if i, ok := index[id]; ok {
				sum.Counts[i].Count++
				worked = true
				abbrs = append(abbrs, shifts[i].Abbreviation)
			} else {
				abbrs = append(abbrs, unknownAbbreviation)
			}
		}
		if worked {
			sum.WorkedDays++
		}
		if !p.Annual() && len(abbrs) > 0 {
			combos[strings.Join(abbrs, "/")]++
		}
	}

	if !p.Annual() {
		sum.Combinations = make([]Combination, 0, len(combos))
		for k, n := range combos {
			sum.Combinations = append(sum.Combinations, Combination{Key: k, Count: n})
		}
		sort.Slice(sum.Combinations, func(i, j int) bool {
			a, b := sum.Combinations[i], sum.Combinations[j]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Key < b.Key
		})
	}
	return sum
}

// Active computes the summary of the active calendar of st.
func Active(st *model.AppState, p Period) Summary {
	return Compute(st.Active(), st.Shifts, p)
}
