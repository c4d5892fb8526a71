package spssconverter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReaderSniffsTypes(t *testing.T) {
	src := "a|b|c\n1|x|1.5\n2|y|2.5\n3|z|NaN\n"
	rdr := NewCSVReader(strings.NewReader(src))

	data, err := rdr.Read(-1)
	require.NoError(t, err)
	require.Len(t, data, 3)

	assert.Equal(t, []string{"a", "b", "c"}, rdr.ColumnNames)
	assert.Equal(t, []string{"float64", "string", "float64"}, rdr.DataTypes)

	assert.Equal(t, float64(2), data[0].Value(1))
	assert.Equal(t, "y", data[1].Value(1))

	// The null text is missing, not a value.
	assert.True(t, data[2].IsMissing(2))
}

func TestCSVReaderNoHeader(t *testing.T) {
	src := "1|x\n2|y\n"
	rdr := NewCSVReader(strings.NewReader(src))
	rdr.HasHeader = false

	data, err := rdr.Read(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Column 1", "Column 2"}, rdr.ColumnNames)
	assert.Equal(t, 2, data[0].Length())
}

func TestCSVReaderSkipRows(t *testing.T) {
	src := "junk\na|b\n1|x\n"
	rdr := NewCSVReader(strings.NewReader(src))
	rdr.SkipRows = 1

	data, err := rdr.Read(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rdr.ColumnNames)
	assert.Equal(t, 1, data[0].Length())
}

func TestCSVReaderLineLimit(t *testing.T) {
	src := "a\n1\n2\n3\n4\n"
	rdr := NewCSVReader(strings.NewReader(src))

	data, err := rdr.Read(2)
	require.NoError(t, err)
	assert.Equal(t, 2, data[0].Length())
}

func TestCSVReaderTypeHints(t *testing.T) {
	src := "a|b\n1|2\n3|4\n"
	rdr := NewCSVReader(strings.NewReader(src))
	rdr.TypeHintsName = map[string]string{"b": "string"}

	data, err := rdr.Read(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"float64", "string"}, rdr.DataTypes)
	assert.Equal(t, "2", data[1].Value(0))
}

func TestCSVReaderEmptyInput(t *testing.T) {
	rdr := NewCSVReader(strings.NewReader(""))
	_, err := rdr.Read(-1)
	assert.ErrorIs(t, err, ErrInvalidDataFormat)
}

func TestCSVReaderCommaDelimiter(t *testing.T) {
	src := "a,b\n1,x\n"
	rdr := NewCSVReader(strings.NewReader(src))
	rdr.Delimiter = ','

	data, err := rdr.Read(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rdr.ColumnNames)
	assert.Equal(t, float64(1), data[0].Value(0))
}

func TestSeriesFromRows(t *testing.T) {
	names := []string{"a", "b"}
	rows := [][]string{
		{"1", "x"},
		{"NaN", "y"},
		{"3"},
	}

	data, err := seriesFromRows(names, rows, "NaN")
	require.NoError(t, err)
	require.Len(t, data, 2)

	assert.Equal(t, float64(1), data[0].Value(0))
	assert.True(t, data[0].IsMissing(1))
	assert.Equal(t, float64(3), data[0].Value(2))

	// The ragged row's absent cell is missing.
	assert.True(t, data[1].IsMissing(2))
}
