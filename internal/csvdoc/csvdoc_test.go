package csvdoc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(t *Table, field string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Value(field)
	}
	return out
}

func TestParseHeaderAndRows(t *testing.T) {
	tbl, err := Parse("name,age\nAlice,30\nBob,25\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, tbl.Fields)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Alice", tbl.Rows[0].Value("name"))
	assert.Equal(t, "25", tbl.Rows[1].Value("age"))
}

func TestParseQuotedFields(t *testing.T) {
	tbl, err := Parse("id,note\n1,\"hello, world\"\n2,\"two\nlines\"\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"hello, world", "two\nlines"}, column(tbl, "note"))
}

func TestParseRaggedRows(t *testing.T) {
	tbl, err := Parse("a,b,c\n1,2\n4,5,6,7\n")
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Rows[0].Value("c"))
	assert.Equal(t, "6", tbl.Rows[1].Value("c"))
	assert.Equal(t, 1, tbl.Warnings)
	for _, r := range tbl.Rows {
		assert.Len(t, r, 3)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	tbl, err := Parse("a,b\n\n1,2\n\n")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestParseDuplicateHeaders(t *testing.T) {
	tbl, err := Parse("x,x,x_1,x\n1,2,3,4\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "x_2", "x_1", "x_3"}, tbl.Fields)
	assert.Equal(t, "2", tbl.Rows[0].Value("x_2"))
	assert.Equal(t, "3", tbl.Rows[0].Value("x_1"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"bare quote", "a,b\nx\"y,1\n"},
		{"unterminated quote", "a,b\n\"open,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	inputs := []string{
		"name,age\nAlice,30\nBob,25\n",
		"id,note\n1,\"hello, world\"\n2,\"say \"\"hi\"\"\"\n3,\"multi\nline\"\n",
		"only\n",
		"a,b\r\n1,2\r\n",
		"a\n\"\"\nx\n",
	}
	for _, in := range inputs {
		first, err := Parse(in)
		require.NoError(t, err)

		text, err := Serialize(first)
		require.NoError(t, err)

		second, err := Parse(text)
		require.NoError(t, err)

		assert.Equal(t, first.Fields, second.Fields)
		assert.Equal(t, first.Rows, second.Rows)
	}
}

func TestSerializeSingleEmptyCell(t *testing.T) {
	tbl, err := Parse("a\n\"\"\nx\n")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)

	text, err := Serialize(tbl)
	require.NoError(t, err)
	assert.Equal(t, "a\n\"\"\nx", text)

	again, err := Parse(text)
	require.NoError(t, err)
	assert.Len(t, again.Rows, 2)
	assert.Equal(t, "", again.Rows[0].Value("a"))
}

func TestParseStripsByteOrderMark(t *testing.T) {
	tbl, err := Parse("\ufeffname,age\nAlice,30\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, tbl.Fields)
	assert.Equal(t, "Alice", tbl.Rows[0].Value("name"))
}

func TestSerializeFormat(t *testing.T) {
	tbl, err := Parse("name,age\nAlice,30\nBob,25\n")
	require.NoError(t, err)

	text, err := Serialize(tbl)
	require.NoError(t, err)
	assert.Equal(t, "name,age\nAlice,30\nBob,25", text)
}

func TestSortByAscendingAndDescending(t *testing.T) {
	tbl, err := Parse("name,age\nAlice,30\nBob,25\n")
	require.NoError(t, err)

	asc, err := tbl.SortBy(1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice"}, column(asc, "name"))

	desc, err := asc.SortBy(1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, column(desc, "name"))

	// the source ordering is left untouched
	assert.Equal(t, []string{"Alice", "Bob"}, column(tbl, "name"))
}

func TestSortByDescendingReversesDistinctKeys(t *testing.T) {
	tbl, err := Parse("k\ndelta\nalpha\necho\ncharlie\nbravo\n")
	require.NoError(t, err)

	asc, err := tbl.SortBy(0, true)
	require.NoError(t, err)
	desc, err := asc.SortBy(0, false)
	require.NoError(t, err)

	a := column(asc, "k")
	d := column(desc, "k")
	require.Len(t, d, len(a))
	for i := range a {
		assert.Equal(t, a[i], d[len(d)-1-i])
	}
}

func TestSortByIsStable(t *testing.T) {
	tbl, err := Parse("id,group\n1,b\n2,a\n3,b\n4,a\n5,b\n")
	require.NoError(t, err)

	asc, err := tbl.SortBy(1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4", "1", "3", "5"}, column(asc, "id"))

	desc, err := tbl.SortBy(1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "5", "2", "4"}, column(desc, "id"))
}

func TestSortByMissingValuesSortAsEmpty(t *testing.T) {
	tbl, err := Parse("a,b\n1,z\n2\n3,m\n")
	require.NoError(t, err)

	asc, err := tbl.SortBy(1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, column(asc, "a"))
}

func TestSortByIsLexicographic(t *testing.T) {
	tbl, err := Parse("n\n10\n9\n100\n")
	require.NoError(t, err)

	asc, err := tbl.SortBy(0, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "100", "9"}, column(asc, "n"))
}

func TestSortByOutOfRange(t *testing.T) {
	tbl, err := Parse("a\n1\n")
	require.NoError(t, err)

	_, err = tbl.SortBy(3, true)
	assert.True(t, errors.Is(err, ErrColumnOutOfRange))
	_, err = tbl.SortBy(-1, true)
	assert.True(t, errors.Is(err, ErrColumnOutOfRange))
}

func TestSortByPreservesRowCount(t *testing.T) {
	tbl, err := Parse("a,b\n3,x\n1,y\n2,z\n1,w\n")
	require.NoError(t, err)

	sorted, err := tbl.SortBy(0, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, tbl.Rows, sorted.Rows)
}
