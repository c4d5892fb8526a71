package spssconverter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries(t *testing.T) {
	ser, err := NewSeries("x", []float64{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, ser.Length())
	assert.False(t, ser.IsMissing(1))

	_, err = NewSeries("x", []float64{1, 2, 3}, []bool{true})
	assert.ErrorIs(t, err, ErrInvalidDataFormat)

	_, err = NewSeries("x", []complex128{1i}, nil)
	assert.ErrorIs(t, err, ErrInvalidDataFormat)
}

func TestSeriesValue(t *testing.T) {
	ser, err := NewSeries("x", []float64{1, 2, 3}, []bool{false, true, false})
	require.NoError(t, err)

	assert.Equal(t, float64(1), ser.Value(0))
	assert.Nil(t, ser.Value(1))
	assert.True(t, ser.IsMissing(1))
}

func TestSeriesCellString(t *testing.T) {
	f, err := NewSeries("f", []float64{1.5, 2}, []bool{false, true})
	require.NoError(t, err)
	assert.Equal(t, "1.5", f.CellString(0, "NaN", '.'))
	assert.Equal(t, "1,5", f.CellString(0, "NaN", ','))
	assert.Equal(t, "NaN", f.CellString(1, "NaN", '.'))

	n, err := NewSeries("n", []int64{42}, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", n.CellString(0, "NaN", '.'))

	when := time.Date(2021, 3, 14, 9, 26, 53, 0, time.UTC)
	d, err := NewSeries("d", []time.Time{when}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-14 09:26:53", d.CellString(0, "NaN", '.'))
}

func TestSeriesSlice(t *testing.T) {
	ser, err := NewSeries("x", []float64{1, 2, 3, 4, 5}, []bool{false, false, true, false, false})
	require.NoError(t, err)

	win := ser.Slice(1, 3)
	assert.Equal(t, 2, win.Length())
	assert.Equal(t, float64(2), win.Value(0))
	assert.True(t, win.IsMissing(1))

	// Out-of-range bounds clamp.
	assert.Equal(t, 5, ser.Slice(-1, 10).Length())
	assert.Equal(t, 0, ser.Slice(7, 10).Length())
}

func TestSeriesMapValues(t *testing.T) {
	labels := map[interface{}]string{int64(1): "one", float64(2): "two"}

	ser, err := NewSeries("x", []float64{1, 2, 3}, []bool{false, false, false})
	require.NoError(t, err)

	mapped := ser.MapValues(labels)
	// Integral floats resolve against int64 keys and vice versa.
	assert.Equal(t, "one", mapped.Value(0))
	assert.Equal(t, "two", mapped.Value(1))

	// Unlabeled values render as text.
	assert.Equal(t, "3", mapped.Value(2))
}

func TestSeriesAllClose(t *testing.T) {
	a, err := NewSeries("x", []float64{1, 2, 3}, nil)
	require.NoError(t, err)
	b, err := NewSeries("x", []float64{1, 2, 3.0001}, nil)
	require.NoError(t, err)

	ok, _ := a.AllClose(b, 0.01)
	assert.True(t, ok)

	ok, j := a.AllClose(b, 1e-6)
	assert.False(t, ok)
	assert.Equal(t, 2, j)

	short, err := NewSeries("x", []float64{1}, nil)
	require.NoError(t, err)
	ok, j = a.AllClose(short, 0.01)
	assert.False(t, ok)
	assert.Equal(t, -1, j)

	str, err := NewSeries("x", []string{"1", "2", "3"}, nil)
	require.NoError(t, err)
	ok, j = a.AllClose(str, 0.01)
	assert.False(t, ok)
	assert.Equal(t, -2, j)
}

func TestSeriesArray(t *testing.T) {
	sa := SeriesArray(sampleData())

	assert.Equal(t, []string{"id", "age", "sex"}, sa.ColumnNames())
	assert.Equal(t, 5, sa.NumRows())

	dropped := sa.Drop("age")
	assert.Equal(t, []string{"id", "sex"}, dropped.ColumnNames())

	records := sa.Records()
	require.Len(t, records, 5)
	assert.Equal(t, float64(1), records[0]["id"])
	assert.Nil(t, records[2]["age"])

	ok, _, _ := sa.AllEqual(sampleData())
	assert.True(t, ok)
}

func TestSeriesArrayEmpty(t *testing.T) {
	var sa SeriesArray
	assert.Equal(t, 0, sa.NumRows())
	assert.Empty(t, sa.Records())
}
