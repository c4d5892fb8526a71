package spssconverter

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleData returns the dataset served by the fake codec: five
// respondents with a numeric id, an age with one missing value, and a
// coded sex variable.
func sampleData() []*Series {
	id, _ := NewSeries("id", []float64{1, 2, 3, 4, 5}, nil)
	age, _ := NewSeries("age", []float64{32, 34, 0, 41, 26}, []bool{false, false, true, false, false})
	sex, _ := NewSeries("sex", []float64{1, 2, 1, 2, 1}, nil)
	return []*Series{id, age, sex}
}

func sampleContainer() *Container {
	sexLabels := map[interface{}]string{int64(1): "male", int64(2): "female"}

	ct := NewContainer()
	ct.ColumnNames = []string{"id", "age", "sex"}
	ct.ColumnLabels = []string{"Identifier", "Age in years", "Sex"}
	ct.ColumnNamesToLabels = map[string]string{
		"id": "Identifier", "age": "Age in years", "sex": "Sex",
	}
	ct.VariableToLabel = map[string]string{
		"id": "Identifier", "age": "Age in years", "sex": "Sex",
	}
	ct.VariableAlignment = map[string]string{"id": "right", "age": "right", "sex": "left"}
	ct.VariableMeasure = map[string]string{"id": "scale", "age": "scale", "sex": "nominal"}
	ct.VariableDisplayWidth = map[string]int{"id": 8, "age": 8, "sex": 10}
	ct.VariableStorageWidth = map[string]int{"id": 8, "age": 8, "sex": 1}
	ct.VariableValueLabels = map[string]map[interface{}]string{"sex": sexLabels}
	ct.ValueLabels = map[string]map[interface{}]string{"Sex": sexLabels}
	ct.MissingRanges = map[string][]RawMissingRange{"age": {{Lo: -99, Hi: -90}}}
	ct.TableName = "respondents"
	ct.FileLabel = "Example respondent data"
	ct.FileEncoding = "UTF-8"
	ct.Notes = "collected 2021"
	ct.NumberRows = 5
	return ct
}

// fakeCodec serves the sample dataset on reads and records write calls
// as a JSON payload, honoring the documented codec contract.
type fakeCodec struct{}

func (fakeCodec) ReadSav(path string, opts ReadOptions) ([]*Series, *Container, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}
	ct := sampleContainer()
	data := SeriesArray(sampleData())

	if len(opts.IncludeVariables) > 0 {
		keep := make(map[string]bool, len(opts.IncludeVariables))
		for _, n := range opts.IncludeVariables {
			keep[n] = true
		}
		var names, labels []string
		var drop []string
		for i, n := range ct.ColumnNames {
			if keep[n] {
				names = append(names, n)
				labels = append(labels, ct.ColumnLabels[i])
			} else {
				drop = append(drop, n)
			}
		}
		ct.ColumnNames = names
		ct.ColumnLabels = labels
		data = data.Drop(drop...)
	}

	if opts.MetadataOnly {
		return nil, ct, nil
	}

	total := ct.NumberRows
	first := opts.Offset
	if first > total {
		first = total
	}
	last := total
	if opts.Limit > 0 && first+opts.Limit < last {
		last = first + opts.Limit
	}
	out := make([]*Series, len(data))
	for i, ser := range data {
		out[i] = ser.Slice(first, last)
	}

	if opts.ApplyLabels {
		for i, ser := range out {
			if labels, ok := ct.VariableValueLabels[ser.Name]; ok {
				out[i] = ser.MapValues(labels)
			}
		}
	}
	return out, ct, nil
}

// fakeSavPayload is the fake on-disk representation written by the
// fake codec, decoded by write-path tests.
type fakeSavPayload struct {
	Columns      []string                     `json:"columns"`
	Rows         [][]interface{}              `json:"rows"`
	Compress     bool                         `json:"compress"`
	FileLabel    string                       `json:"file_label"`
	Note         string                       `json:"note"`
	ColumnLabels []string                     `json:"column_labels"`
	ValueLabels  map[string]map[string]string `json:"value_labels"`
	Measures     map[string]string            `json:"measures"`
}

func (fakeCodec) WriteSav(data []*Series, path string, compress bool, opts *WriteSavOptions) error {
	sa := SeriesArray(data)
	p := fakeSavPayload{Columns: sa.ColumnNames(), Compress: compress}

	n := sa.NumRows()
	for i := 0; i < n; i++ {
		row := make([]interface{}, len(data))
		for j, ser := range data {
			row[j] = ser.Value(i)
		}
		p.Rows = append(p.Rows, row)
	}

	if opts != nil {
		p.FileLabel = opts.FileLabel
		p.Note = opts.Note
		p.ColumnLabels = opts.ColumnLabels
		p.Measures = opts.Measures
		p.ValueLabels = make(map[string]map[string]string, len(opts.ValueLabels))
		for name, labels := range opts.ValueLabels {
			m := make(map[string]string, len(labels))
			for k, v := range labels {
				m[fmt.Sprint(k)] = v
			}
			p.ValueLabels[name] = m
		}
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func decodeFakeSav(t *testing.T, raw []byte) fakeSavPayload {
	t.Helper()
	var p fakeSavPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	return p
}

func TestMain(m *testing.M) {
	RegisterCodec(fakeCodec{})
	os.Exit(m.Run())
}

func TestNoCodecRegistered(t *testing.T) {
	RegisterCodec(nil)
	defer RegisterCodec(fakeCodec{})

	_, err := GetMetadata([]byte("sav"))
	require.ErrorIs(t, err, ErrNoCodec)

	_, err = FromSeries(sampleData(), nil, nil, false)
	require.ErrorIs(t, err, ErrNoCodec)
}

func TestContainerHasColumn(t *testing.T) {
	ct := sampleContainer()
	require.True(t, ct.HasColumn("age"))
	require.False(t, ct.HasColumn("income"))
}
