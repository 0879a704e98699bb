package spotquery_test

import (
	"strings"
	"testing"

	"spots/internal/spotquery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestParseTag(t *testing.T) {
	for _, tag := range spotquery.Tags {
		parsed, ok := spotquery.ParseTag(string(tag))
		assert.True(t, ok)
		assert.Equal(t, tag, parsed)
	}

	_, ok := spotquery.ParseTag("cheap")
	assert.False(t, ok)
	_, ok = spotquery.ParseTag("")
	assert.False(t, ok)
}

func TestFilterPredicates_Empty(t *testing.T) {
	assert.Empty(t, spotquery.Filter{}.Predicates())
	assert.Empty(t, spotquery.Filter{}.HavingPredicates())

	// Whitespace-only terms are treated as absent, not as a match-all wildcard.
	assert.Empty(t, spotquery.Filter{Term: "   \t"}.Predicates())
}

func TestFilterPredicates_Order(t *testing.T) {
	f := spotquery.Filter{
		Term: "  Cafe ",
		Tags: []spotquery.Tag{
			spotquery.TagClose,
			spotquery.TagAffordable,
			spotquery.TagLateNight,
			spotquery.TagAffordable,
		},
	}

	preds := f.Predicates()
	require.Len(t, preds, 4)

	assert.Equal(t, spotquery.OpContains, preds[0].Op)
	assert.Equal(t, []string{spotquery.ColumnName, spotquery.ColumnCategory}, preds[0].Columns)
	// Non-blank terms are matched verbatim.
	assert.Equal(t, "  Cafe ", preds[0].Value)

	// Tags follow the fixed enumeration order regardless of request order.
	assert.Equal(t, []string{"spots.late_night"}, preds[1].Columns)
	assert.Equal(t, []string{"spots.affordable"}, preds[2].Columns)
	assert.Equal(t, []string{"spots.close"}, preds[3].Columns)
	for _, p := range preds[1:] {
		assert.Equal(t, spotquery.OpIsTrue, p.Op)
	}
}

func TestFilterHavingPredicates(t *testing.T) {
	preds := spotquery.Filter{MinRating: floatPtr(4)}.HavingPredicates()
	require.Len(t, preds, 1)
	assert.Equal(t, spotquery.OpAtLeast, preds[0].Op)
	assert.Equal(t, []string{spotquery.ColumnAvgRating}, preds[0].Columns)
	assert.Equal(t, 4.0, preds[0].Value)
}

func TestNewBuilder_UnknownDialect(t *testing.T) {
	_, err := spotquery.NewBuilder("oracle")
	assert.Error(t, err)
}

func TestBrowse_NoFilter(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectSQLite)
	require.NoError(t, err)

	sql, args, err := b.Browse(spotquery.Filter{})
	require.NoError(t, err)
	assert.Empty(t, args)

	upper := strings.ToUpper(sql)
	assert.Contains(t, upper, "LEFT JOIN")
	assert.Contains(t, upper, "GROUP BY")
	assert.Contains(t, upper, "ORDER BY")
	assert.NotContains(t, upper, "WHERE")
	assert.NotContains(t, upper, "HAVING")
	assert.NotContains(t, upper, "LIMIT")
}

func TestBrowse_BindsEveryValue(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectSQLite)
	require.NoError(t, err)

	f := spotquery.Filter{
		Term:      "Cafe'; DROP TABLE spots; --",
		MinRating: floatPtr(4),
		Tags:      []spotquery.Tag{spotquery.TagAffordable},
	}
	sql, args, err := b.Browse(f)
	require.NoError(t, err)

	assert.NotContains(t, sql, "DROP TABLE")
	assert.Contains(t, args, "%Cafe'; DROP TABLE spots; --%")
	require.NotEmpty(t, args)
	assert.Equal(t, 4.0, args[len(args)-1])

	upper := strings.ToUpper(sql)
	assert.Contains(t, upper, "LIKE")
	assert.Contains(t, upper, "HAVING")
	assert.Contains(t, sql, "affordable")
}

func TestBrowse_Postgres(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectPostgres)
	require.NoError(t, err)

	sql, args, err := b.Browse(spotquery.Filter{Term: "bar"})
	require.NoError(t, err)
	assert.Contains(t, sql, "ILIKE")
	assert.Contains(t, sql, "$1")
	assert.Equal(t, []interface{}{"%bar%", "%bar%"}, args)
}

func TestTopRated(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectSQLite)
	require.NoError(t, err)

	sql, args, err := b.TopRated(spotquery.TopRatedLimit)
	require.NoError(t, err)

	upper := strings.ToUpper(sql)
	assert.Contains(t, upper, "HAVING")
	assert.Contains(t, upper, "DESC")
	assert.Contains(t, upper, "LIMIT")
	assert.NotEmpty(t, args)
}

func TestSpotStats(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectSQLite)
	require.NoError(t, err)

	sql, args, err := b.SpotStats(42)
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(sql), "AVG")
	assert.Len(t, args, 1)
}

func TestBrowse_EscapesWildcards(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectSQLite)
	require.NoError(t, err)

	sql, args, err := b.Browse(spotquery.Filter{Term: `100%_\`})
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(sql), "ESCAPE")
	assert.Equal(t, []interface{}{`%100\%\_\\%`, `%100\%\_\\%`}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", spotquery.EscapeLike("plain"))
	assert.Equal(t, `\%`, spotquery.EscapeLike("%"))
	assert.Equal(t, `a\_b`, spotquery.EscapeLike("a_b"))
	assert.Equal(t, `\\`, spotquery.EscapeLike(`\`))
}

func TestCompile_Errors(t *testing.T) {
	b, err := spotquery.NewBuilder(spotquery.DialectSQLite)
	require.NoError(t, err)

	_, err = b.Compile(spotquery.Predicate{Op: spotquery.OpIsTrue})
	assert.Error(t, err)

	_, err = b.Compile(spotquery.Predicate{Columns: []string{"spots.name"}, Op: spotquery.OpContains, Value: 3})
	assert.Error(t, err)

	_, err = b.Compile(spotquery.Predicate{Columns: []string{"spots.name"}, Op: "regex"})
	assert.Error(t, err)
}
