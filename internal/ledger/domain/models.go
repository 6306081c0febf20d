package domain

import "time"

// dayLayout is the calendar-date key format used in the persisted snapshot.
const dayLayout = "2006-01-02"

// Day is a calendar date key ("2006-01-02").
type Day string

// DayOf returns the Day the given instant falls on, in UTC.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(dayLayout))
}

// AddDays returns the Day offset by n calendar days. Invalid days return themselves.
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(dayLayout))
}

// DayTotals accumulates nutrition for one user on one calendar date.
// A (user, day) pair with no entry reads identically to all-zero totals.
type DayTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Add returns the component-wise sum.
func (t DayTotals) Add(delta DayTotals) DayTotals {
	return DayTotals{
		Calories: t.Calories + delta.Calories,
		Protein:  t.Protein + delta.Protein,
		Fat:      t.Fat + delta.Fat,
		Carbs:    t.Carbs + delta.Carbs,
	}
}

// Sub returns the component-wise difference.
func (t DayTotals) Sub(delta DayTotals) DayTotals {
	return DayTotals{
		Calories: t.Calories - delta.Calories,
		Protein:  t.Protein - delta.Protein,
		Fat:      t.Fat - delta.Fat,
		Carbs:    t.Carbs - delta.Carbs,
	}
}

// Scale returns the totals multiplied by factor.
func (t DayTotals) Scale(factor float64) DayTotals {
	return DayTotals{
		Calories: t.Calories * factor,
		Protein:  t.Protein * factor,
		Fat:      t.Fat * factor,
		Carbs:    t.Carbs * factor,
	}
}

// IsZero reports whether all components are zero.
func (t DayTotals) IsZero() bool {
	return t == DayTotals{}
}

// Snapshot is the persisted form of the ledger: userID -> day -> totals.
type Snapshot map[string]map[Day]DayTotals

// Clone returns a deep copy safe to serialize outside the ledger lock.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for user, days := range s {
		cp := make(map[Day]DayTotals, len(days))
		for d, t := range days {
			cp[d] = t
		}
		out[user] = cp
	}
	return out
}

// WeekSummary is the result of a windowed average. DaysWithData == 0 is the
// defined "no data" result, distinct from an average of all-zero days.
type WeekSummary struct {
	Average      DayTotals
	DaysWithData int
}
