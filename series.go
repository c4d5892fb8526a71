package spssconverter

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// A Series is a fixed-type one-dimensional sequence of data values,
// with an optional mask for missing values.  It is the in-memory
// representation of one variable's data.
type Series struct {

	// A name describing what is in this series.
	Name string

	// The length of the series.
	length int

	// The data, must be a slice of primitives: []float64, []int64,
	// []string, or []time.Time.
	data interface{}

	// Indicators that data values are missing.  If nil, there are
	// no missing values.
	missing []bool
}

// slen returns the length of a data slice held in an interface value.
func slen(data interface{}) (int, error) {
	switch x := data.(type) {
	case []float64:
		return len(x), nil
	case []int64:
		return len(x), nil
	case []string:
		return len(x), nil
	case []time.Time:
		return len(x), nil
	default:
		return 0, fmt.Errorf("%w: unsupported series data type %T", ErrInvalidDataFormat, data)
	}
}

// NewSeries returns a new Series with the given name and data
// contents.  The data slice is not copied.
func NewSeries(name string, data interface{}, missing []bool) (*Series, error) {
	length, err := slen(data)
	if err != nil {
		return nil, err
	}
	if missing != nil && len(missing) != length {
		return nil, fmt.Errorf("%w: missing mask length %d does not match data length %d",
			ErrInvalidDataFormat, len(missing), length)
	}
	return &Series{Name: name, length: length, data: data, missing: missing}, nil
}

// Length returns the number of elements in the Series.
func (ser *Series) Length() int { return ser.length }

// Data returns the data component of the Series.
func (ser *Series) Data() interface{} { return ser.data }

// Missing returns the array of missing value indicators.
func (ser *Series) Missing() []bool { return ser.missing }

// IsMissing reports whether position i holds a missing value.
func (ser *Series) IsMissing(i int) bool {
	return ser.missing != nil && ser.missing[i]
}

// Value returns the value at position i, or nil if it is missing.
func (ser *Series) Value(i int) interface{} {
	if ser.IsMissing(i) {
		return nil
	}
	switch x := ser.data.(type) {
	case []float64:
		return x[i]
	case []int64:
		return x[i]
	case []string:
		return x[i]
	case []time.Time:
		return x[i]
	}
	return nil
}

// CellString renders the value at position i as text.  Missing values
// render as nullText.  Floats use the shortest representation that
// round-trips, with decimal as the decimal separator.
func (ser *Series) CellString(i int, nullText string, decimal rune) string {
	if ser.IsMissing(i) {
		return nullText
	}
	switch x := ser.data.(type) {
	case []float64:
		s := strconv.FormatFloat(x[i], 'f', -1, 64)
		if decimal != '.' && decimal != 0 {
			for j := 0; j < len(s); j++ {
				if s[j] == '.' {
					s = s[:j] + string(decimal) + s[j+1:]
					break
				}
			}
		}
		return s
	case []int64:
		return strconv.FormatInt(x[i], 10)
	case []string:
		return x[i]
	case []time.Time:
		return x[i].UTC().Format("2006-01-02 15:04:05")
	}
	return nullText
}

// Slice returns a new Series restricted to the half-open row window
// [first, last).  Bounds beyond the series are clamped.
func (ser *Series) Slice(first, last int) *Series {
	if first < 0 {
		first = 0
	}
	if last > ser.length {
		last = ser.length
	}
	if first > last {
		first = last
	}

	var miss []bool
	if ser.missing != nil {
		miss = append([]bool(nil), ser.missing[first:last]...)
	}

	var data interface{}
	switch x := ser.data.(type) {
	case []float64:
		data = append([]float64(nil), x[first:last]...)
	case []int64:
		data = append([]int64(nil), x[first:last]...)
	case []string:
		data = append([]string(nil), x[first:last]...)
	case []time.Time:
		data = append([]time.Time(nil), x[first:last]...)
	}

	out, _ := NewSeries(ser.Name, data, miss)
	return out
}

// lookupLabel resolves the value-label entry for a raw value, trying
// the numerically equivalent key forms.
func lookupLabel(labels map[interface{}]string, v interface{}) (string, bool) {
	if s, ok := labels[v]; ok {
		return s, true
	}
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) {
			if s, ok := labels[int64(x)]; ok {
				return s, true
			}
		}
	case int64:
		if s, ok := labels[float64(x)]; ok {
			return s, true
		}
	}
	return "", false
}

// MapValues returns a string Series in which raw values with an entry
// in labels are replaced by their label, and unlabeled values are
// rendered as text.  The missing mask is preserved.
func (ser *Series) MapValues(labels map[interface{}]string) *Series {
	n := ser.length
	var miss []bool
	if ser.missing != nil {
		miss = append([]bool(nil), ser.missing...)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		if ser.IsMissing(i) {
			continue
		}
		if s, ok := lookupLabel(labels, ser.Value(i)); ok {
			out[i] = s
		} else {
			out[i] = ser.CellString(i, "", '.')
		}
	}

	mapped, _ := NewSeries(ser.Name, out, miss)
	return mapped
}

// AllClose returns true, 0 if the Series is within tol of the other
// series.  If the Series have different lengths, AllClose returns
// false, -1.  If the Series have different types, AllClose returns
// false, -2.  Otherwise it returns false, j, where j is the index of
// the first position where the two series differ.
func (ser *Series) AllClose(other *Series, tol float64) (bool, int) {
	if ser.length != other.length {
		return false, -1
	}

	// Missing-mask comparison for position j: 0 inconsistent, 1 both
	// present, 2 both missing.
	cmiss := func(j int) int {
		f1 := !ser.IsMissing(j)
		f2 := !other.IsMissing(j)
		if f1 != f2 {
			return 0
		} else if f1 {
			return 1
		}
		return 2
	}

	switch u := ser.data.(type) {
	case []float64:
		v, ok := other.data.([]float64)
		if !ok {
			return false, -2
		}
		for j := 0; j < ser.length; j++ {
			switch cmiss(j) {
			case 0:
				return false, j
			case 1:
				if math.Abs(u[j]-v[j]) > tol {
					return false, j
				}
			}
		}
	case []int64:
		v, ok := other.data.([]int64)
		if !ok {
			return false, -2
		}
		for j := 0; j < ser.length; j++ {
			switch cmiss(j) {
			case 0:
				return false, j
			case 1:
				if u[j] != v[j] {
					return false, j
				}
			}
		}
	case []string:
		v, ok := other.data.([]string)
		if !ok {
			return false, -2
		}
		for j := 0; j < ser.length; j++ {
			switch cmiss(j) {
			case 0:
				return false, j
			case 1:
				if u[j] != v[j] {
					return false, j
				}
			}
		}
	case []time.Time:
		v, ok := other.data.([]time.Time)
		if !ok {
			return false, -2
		}
		for j := 0; j < ser.length; j++ {
			switch cmiss(j) {
			case 0:
				return false, j
			case 1:
				if !u[j].Equal(v[j]) {
					return false, j
				}
			}
		}
	default:
		return false, -2
	}
	return true, 0
}

// AllEqual is equivalent to AllClose with tol=0.
func (ser *Series) AllEqual(other *Series) (bool, int) {
	return ser.AllClose(other, 0.0)
}

// SeriesArray is an array of pointers to Series objects.  It
// represents a dataset consisting of several variables.
type SeriesArray []*Series

// ColumnNames returns the names of the columns, in order.
func (sa SeriesArray) ColumnNames() []string {
	names := make([]string, len(sa))
	for i, ser := range sa {
		names[i] = ser.Name
	}
	return names
}

// NumRows returns the number of rows in the dataset, zero when the
// dataset has no columns.
func (sa SeriesArray) NumRows() int {
	if len(sa) == 0 {
		return 0
	}
	return sa[0].Length()
}

// Drop returns a dataset without the named columns.
func (sa SeriesArray) Drop(names ...string) SeriesArray {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	out := make(SeriesArray, 0, len(sa))
	for _, ser := range sa {
		if !dropped[ser.Name] {
			out = append(out, ser)
		}
	}
	return out
}

// Records projects the dataset as one mapping per row.  Missing
// values appear as nil entries.
func (sa SeriesArray) Records() []map[string]interface{} {
	n := sa.NumRows()
	records := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]interface{}, len(sa))
		for _, ser := range sa {
			rec[ser.Name] = ser.Value(i)
		}
		records[i] = rec
	}
	return records
}

// AllClose returns (true, 0, 0) if all values in corresponding
// columns of the two datasets are within the given tolerance.
// Otherwise it returns (false, j, i) identifying the first differing
// column j and row i, with the same sentinel conventions as
// Series.AllClose.  Datasets with different column counts return
// (false, -1, -1).
func (sa SeriesArray) AllClose(other []*Series, tol float64) (bool, int, int) {
	if len(sa) != len(other) {
		return false, -1, -1
	}
	for j := 0; j < len(sa); j++ {
		if f, i := sa[j].AllClose(other[j], tol); !f {
			return false, j, i
		}
	}
	return true, 0, 0
}

// AllEqual is equivalent to AllClose with tol = 0.
func (sa SeriesArray) AllEqual(other []*Series) (bool, int, int) {
	return sa.AllClose(other, 0.0)
}
