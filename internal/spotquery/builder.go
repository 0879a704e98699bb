package spotquery

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
)

// TopRatedLimit is the size of the home page "top rated" list.
const TopRatedLimit = 5

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// SummaryColumns is the column order of Browse and TopRated result rows.
var SummaryColumns = []string{
	"id", "name", "category", "latitude", "longitude",
	"late_night", "fine_dining", "health_conscious", "affordable", "sweet_treat", "close",
	"avg_rating", "review_count",
}

// avgRating is ROUND(AVG(rating), 1) over the joined reviews.
var avgRating = goqu.L("ROUND(AVG(?), 1)", goqu.I("reviews.rating"))

var reviewCount = goqu.COUNT(goqu.I("reviews.id"))

// Builder compiles spot queries for one SQL dialect.
type Builder struct {
	dialect goqu.DialectWrapper
	// like is the case-insensitive match operator of the dialect. SQLite's
	// LIKE already ignores ASCII case.
	like string
}

// NewBuilder returns a Builder for "sqlite3" or "postgres".
func NewBuilder(dialect string) (*Builder, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	like := "LIKE"
	if dialect == DialectPostgres {
		like = "ILIKE"
	}
	return &Builder{dialect: goqu.Dialect(dialect), like: like}, nil
}

func (b *Builder) summaries() *goqu.SelectDataset {
	return b.dialect.
		From(goqu.T("spots")).
		Prepared(true).
		Select(
			goqu.I("spots.id"),
			goqu.I("spots.name"),
			goqu.I("spots.category"),
			goqu.I("spots.latitude"),
			goqu.I("spots.longitude"),
			goqu.I("spots.late_night"),
			goqu.I("spots.fine_dining"),
			goqu.I("spots.health_conscious"),
			goqu.I("spots.affordable"),
			goqu.I("spots.sweet_treat"),
			goqu.I("spots.close"),
			avgRating.As("avg_rating"),
			reviewCount.As("review_count"),
		).
		LeftJoin(goqu.T("reviews"), goqu.On(goqu.I("reviews.spot_id").Eq(goqu.I("spots.id")))).
		GroupBy(goqu.I("spots.id"))
}

// Browse compiles the filtered browse query. Spots without reviews are kept
// (null average, zero count) unless a minimum rating is requested. Results
// are ordered by name, then id.
func (b *Builder) Browse(f Filter) (string, []interface{}, error) {
	ds := b.summaries()

	for _, p := range f.Predicates() {
		e, err := b.Compile(p)
		if err != nil {
			return "", nil, err
		}
		ds = ds.Where(e)
	}
	for _, p := range f.HavingPredicates() {
		e, err := b.Compile(p)
		if err != nil {
			return "", nil, err
		}
		ds = ds.Having(e)
	}

	ds = ds.Order(goqu.I("spots.name").Asc(), goqu.I("spots.id").Asc())
	return ds.ToSQL()
}

// TopRated compiles the home page query: reviewed spots only, best average
// first, then most reviews, then lowest id.
func (b *Builder) TopRated(limit uint) (string, []interface{}, error) {
	ds := b.summaries().
		Having(reviewCount.Gt(0)).
		Order(
			avgRating.Desc(),
			reviewCount.Desc(),
			goqu.I("spots.id").Asc(),
		).
		Limit(limit)
	return ds.ToSQL()
}

// SpotStats compiles the average/count query for a single spot. The result
// has the columns avg_rating and review_count.
func (b *Builder) SpotStats(spotID uint) (string, []interface{}, error) {
	ds := b.dialect.
		From(goqu.T("reviews")).
		Prepared(true).
		Select(avgRating.As("avg_rating"), reviewCount.As("review_count")).
		Where(goqu.I("reviews.spot_id").Eq(spotID))
	return ds.ToSQL()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Compile converts a Predicate into a goqu expression.
func (b *Builder) Compile(p Predicate) (exp.Expression, error) {
	if len(p.Columns) == 0 {
		return nil, fmt.Errorf("predicate %q has no columns", p.Op)
	}

	switch p.Op {
	case OpContains:
		term, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("contains predicate expects a string, got %T", p.Value)
		}
		pattern := "%" + EscapeLike(term) + "%"
		ors := make([]exp.Expression, 0, len(p.Columns))
		for _, col := range p.Columns {
			ors = append(ors, goqu.L("? "+b.like+` ? ESCAPE '\'`, goqu.I(col), pattern))
		}
		return goqu.Or(ors...), nil

	case OpIsTrue:
		return goqu.I(p.Columns[0]).IsTrue(), nil

	case OpAtLeast:
		if p.Columns[0] == ColumnAvgRating {
			return avgRating.Gte(p.Value), nil
		}
		return goqu.I(p.Columns[0]).Gte(p.Value), nil
	}
	return nil, fmt.Errorf("unknown predicate operator %q", p.Op)
}
