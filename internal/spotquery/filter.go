// Package spotquery turns spot search criteria into parameterized SQL.
//
// Criteria are first reduced to a list of Predicates (column, operator,
// value) and only then compiled with goqu, so that every user supplied value
// ends up as a bound argument.
package spotquery

import (
	"strings"
)

// Tag is one of the boolean spot attributes usable as a filter.
type Tag string

const (
	TagLateNight       Tag = "late_night"
	TagFineDining      Tag = "fine_dining"
	TagHealthConscious Tag = "health_conscious"
	TagAffordable      Tag = "affordable"
	TagSweetTreat      Tag = "sweet_treat"
	TagClose           Tag = "close"
)

// Tags lists every tag in the order their predicates are emitted.
var Tags = []Tag{
	TagLateNight,
	TagFineDining,
	TagHealthConscious,
	TagAffordable,
	TagSweetTreat,
	TagClose,
}

// ParseTag maps a tag name to its Tag.
func ParseTag(name string) (Tag, bool) {
	for _, t := range Tags {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Column returns the qualified spots column backing the tag.
func (t Tag) Column() string {
	return "spots." + string(t)
}

// Operator names the comparison a Predicate performs.
type Operator string

const (
	// OpContains matches when any of the columns contains Value as a
	// case-insensitive substring.
	OpContains Operator = "contains"
	// OpIsTrue matches when the single column is true.
	OpIsTrue Operator = "is_true"
	// OpAtLeast matches when the single column is >= Value.
	OpAtLeast Operator = "at_least"
)

const (
	ColumnName     = "spots.name"
	ColumnCategory = "spots.category"
	// ColumnAvgRating refers to the aggregated average, not a stored column.
	ColumnAvgRating = "avg_rating"
)

// Predicate is a single filter fragment.
type Predicate struct {
	Columns []string
	Op      Operator
	Value   interface{}
}

// Filter holds the optional browse criteria. Zero values impose no constraint.
type Filter struct {
	Term      string
	MinRating *float64
	Tags      []Tag
}

// HasTerm reports whether the term is non-blank. A non-blank term is
// matched as given, surrounding whitespace included.
func (f Filter) HasTerm() bool {
	return strings.TrimSpace(f.Term) != ""
}

// Predicates returns the row-level predicates: the term first, then one per
// requested tag in Tags order. Duplicate tags collapse.
func (f Filter) Predicates() []Predicate {
	var preds []Predicate
	if f.HasTerm() {
		preds = append(preds, Predicate{
			Columns: []string{ColumnName, ColumnCategory},
			Op:      OpContains,
			Value:   f.Term,
		})
	}

	requested := make(map[Tag]bool, len(f.Tags))
	for _, t := range f.Tags {
		requested[t] = true
	}
	for _, t := range Tags {
		if requested[t] {
			preds = append(preds, Predicate{
				Columns: []string{t.Column()},
				Op:      OpIsTrue,
				Value:   true,
			})
		}
	}
	return preds
}

// HavingPredicates returns the predicates applied after aggregation.
func (f Filter) HavingPredicates() []Predicate {
	if f.MinRating == nil {
		return nil
	}
	return []Predicate{{
		Columns: []string{ColumnAvgRating},
		Op:      OpAtLeast,
		Value:   *f.MinRating,
	}}
}
