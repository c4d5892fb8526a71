package spssconverter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlignment(t *testing.T) {
	a, err := ParseAlignment("Center")
	require.NoError(t, err)
	assert.Equal(t, AlignmentCenter, a)

	a, err = ParseAlignment("RIGHT")
	require.NoError(t, err)
	assert.Equal(t, AlignmentRight, a)

	_, err = ParseAlignment("diagonal")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure("Nominal")
	require.NoError(t, err)
	assert.Equal(t, MeasureNominal, m)

	_, err = ParseMeasure("categorical")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("Table")
	require.NoError(t, err)
	assert.Equal(t, LayoutTable, l)

	_, err = ParseLayout("columns")
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestColumnMetadataSetters(t *testing.T) {
	c := new(ColumnMetadata)

	require.NoError(t, c.SetName("age"))
	assert.Equal(t, "age", c.Name())

	// Empty means unset.
	require.NoError(t, c.SetName(""))

	err := c.SetName("9lives")
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = c.SetDisplayWidth(-1)
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = c.SetAlignment(Alignment(42))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSetValueLabelsNormalizesKeys(t *testing.T) {
	c := new(ColumnMetadata)
	require.NoError(t, c.SetValueLabels(map[interface{}]string{
		1:          "one",
		int32(2):   "two",
		float64(3): "three",
		"x":        "ex",
	}))

	labels := c.ValueLabels()
	assert.Equal(t, "one", labels[int64(1)])
	assert.Equal(t, "two", labels[int64(2)])
	assert.Equal(t, "three", labels[float64(3)])
	assert.Equal(t, "ex", labels["x"])

	// Empty normalizes to absent.
	require.NoError(t, c.SetValueLabels(map[interface{}]string{}))
	assert.Nil(t, c.ValueLabels())
}

func TestSetMissingValues(t *testing.T) {
	c := new(ColumnMetadata)

	// A bare scalar becomes a single-element sequence.
	require.NoError(t, c.SetMissingValues(-99))
	assert.Equal(t, []interface{}{int64(-99)}, c.MissingValues())

	require.NoError(t, c.SetMissingValues([]interface{}{"NA", 0}))
	assert.Equal(t, []interface{}{"NA", int64(0)}, c.MissingValues())

	// An empty sequence normalizes to absent.
	require.NoError(t, c.SetMissingValues([]interface{}{}))
	assert.Nil(t, c.MissingValues())

	err := c.SetMissingValues([]interface{}{1.5})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestColumnMetadataFromMap(t *testing.T) {
	c, err := ColumnMetadataFromMap(map[string]interface{}{
		"name":          "age",
		"label":         "Age in years",
		"alignment":     "Right",
		"measure":       "scale",
		"display_width": 8,
		"storage_width": 8,
		"value_metadata": map[interface{}]interface{}{
			1: "young", 2: "old",
		},
		"missing_range_metadata": []interface{}{
			map[string]interface{}{"low": -99, "high": -90},
		},
		"missing_value_metadata": -1,
		"unrecognized_key":       "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "age", c.Name())
	assert.Equal(t, "Age in years", c.Label())
	assert.Equal(t, AlignmentRight, c.Alignment())
	assert.Equal(t, MeasureScale, c.Measure())
	assert.Equal(t, 8, c.DisplayWidth())
	assert.Equal(t, "young", c.ValueLabels()[int64(1)])
	assert.Equal(t, []MissingRange{{Low: -99, High: -90}}, c.MissingRanges())
	assert.Equal(t, []interface{}{int64(-1)}, c.MissingValues())
}

func TestColumnMetadataMapRoundTrip(t *testing.T) {
	c, err := ColumnMetadataFromMap(map[string]interface{}{
		"name":           "sex",
		"label":          "Sex",
		"alignment":      "left",
		"measure":        "nominal",
		"display_width":  10,
		"storage_width":  1,
		"value_metadata": map[string]string{"M": "male", "F": "female"},
	})
	require.NoError(t, err)

	back, err := ColumnMetadataFromMap(c.ToMap())
	require.NoError(t, err)
	assert.True(t, c.Equal(back))
}

func TestMissingRangeRequiresBothBounds(t *testing.T) {
	_, err := ColumnMetadataFromMap(map[string]interface{}{
		"name": "age",
		"missing_range_metadata": []interface{}{
			map[string]interface{}{"low": -99},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ColumnMetadataFromMap(map[string]interface{}{
		"name": "age",
		"missing_range_metadata": []interface{}{
			map[string]interface{}{"high": -90},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestColumnMetadataFromContainer(t *testing.T) {
	ct := sampleContainer()

	c, err := ColumnMetadataFromContainer("age", ct)
	require.NoError(t, err)
	assert.Equal(t, "age", c.Name())
	assert.Equal(t, "Age in years", c.Label())
	assert.Equal(t, AlignmentRight, c.Alignment())
	assert.Equal(t, MeasureScale, c.Measure())
	assert.Equal(t, 8, c.DisplayWidth())
	assert.Equal(t, []MissingRange{{Low: -99, High: -90}}, c.MissingRanges())

	_, err = ColumnMetadataFromContainer("income", ct)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = ColumnMetadataFromContainer("", ct)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestColumnMetadataToMap(t *testing.T) {
	ct := sampleContainer()
	c, err := ColumnMetadataFromContainer("age", ct)
	require.NoError(t, err)

	m := c.ToMap()
	require.Len(t, m, 9)
	assert.Equal(t, "age", m["name"])
	assert.Equal(t, "Age in years", m["label"])
	assert.Equal(t, "right", m["alignment"])
	assert.Equal(t, "scale", m["measure"])
	assert.Equal(t, 8, m["display_width"])
	assert.Equal(t, 8, m["storage_width"])
	assert.Nil(t, m["value_metadata"])
	assert.Equal(t, []MissingRange{{Low: -99, High: -90}}, m["missing_range_metadata"])
	assert.Nil(t, m["missing_value_metadata"])
}

func TestApplyToContainerOverwritesSlot(t *testing.T) {
	ct := sampleContainer()

	c, err := ColumnMetadataFromContainer("sex", ct)
	require.NoError(t, err)
	c.SetLabel("Respondent sex")

	ct = c.ApplyToContainer(ct)
	assert.Equal(t, []string{"id", "age", "sex"}, ct.ColumnNames)
	assert.Equal(t, "Respondent sex", ct.ColumnLabels[2])
	assert.Equal(t, "Respondent sex", ct.ColumnNamesToLabels["sex"])

	// Value labels register under both name and label.
	assert.Contains(t, ct.VariableValueLabels, "sex")
	assert.Contains(t, ct.ValueLabels, "Respondent sex")
}

func TestMetadataColumnOrder(t *testing.T) {
	md := NewMetadata()
	for _, name := range []string{"b", "a", "c"} {
		c := new(ColumnMetadata)
		require.NoError(t, c.SetName(name))
		require.NoError(t, md.SetColumn(name, c))
	}
	assert.Equal(t, []string{"b", "a", "c"}, md.ColumnNames())

	// Replacing an entry keeps its first-seen slot.
	repl := new(ColumnMetadata)
	require.NoError(t, repl.SetName("a"))
	repl.SetLabel("replaced")
	require.NoError(t, md.SetColumn("a", repl))
	assert.Equal(t, []string{"b", "a", "c"}, md.ColumnNames())

	// The folded container preserves the order.
	assert.Equal(t, []string{"b", "a", "c"}, md.ToContainer().ColumnNames)

	md.DropColumn("a")
	assert.Equal(t, []string{"b", "c"}, md.ColumnNames())
	assert.Equal(t, 2, md.Columns())
}

func TestMetadataSetters(t *testing.T) {
	md := NewMetadata()

	err := md.SetTableName("9bad")
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = md.SetRows(-1)
	assert.ErrorIs(t, err, ErrInvalidValue)

	require.NoError(t, md.SetNotes([]string{"line1", "line2"}))
	assert.Equal(t, "line1\nline2", md.Notes())
}

func TestNotesNarrowToFirstLine(t *testing.T) {
	md := NewMetadata()
	require.NoError(t, md.SetNotes([]string{"line1", "line2"}))

	ct := md.ToContainer()
	assert.Equal(t, "line1", ct.Notes)
}

func TestMetadataContainerRoundTrip(t *testing.T) {
	md, err := MetadataFromContainer(sampleContainer())
	require.NoError(t, err)

	assert.Equal(t, "respondents", md.TableName())
	assert.Equal(t, "Example respondent data", md.FileLabel())
	assert.Equal(t, "UTF-8", md.FileEncoding())
	assert.Equal(t, "collected 2021", md.Notes())
	assert.Equal(t, 5, md.Rows())
	assert.Equal(t, 3, md.Columns())
	assert.Equal(t, []string{"id", "age", "sex"}, md.ColumnNames())

	back, err := MetadataFromContainer(md.ToContainer())
	require.NoError(t, err)
	assert.True(t, md.Equal(back))
}

func TestMetadataFromMap(t *testing.T) {
	md, err := MetadataFromMap(map[string]interface{}{
		"table_name":    "survey",
		"file_label":    "Survey results",
		"file_encoding": "UTF-8",
		"rows":          10,
		"notes":         "first wave",
		"column_metadata": map[string]interface{}{
			"q2": map[string]interface{}{"name": "q2", "measure": "ordinal"},
			"q1": map[string]interface{}{"name": "q1", "measure": "nominal"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "survey", md.TableName())
	assert.Equal(t, 10, md.Rows())
	// Map input carries no order; entries insert in sorted key order.
	assert.Equal(t, []string{"q1", "q2"}, md.ColumnNames())

	q1, ok := md.Column("q1")
	require.True(t, ok)
	assert.Equal(t, MeasureNominal, q1.Measure())
}

func TestMetadataMapRoundTrip(t *testing.T) {
	md, err := MetadataFromContainer(sampleContainer())
	require.NoError(t, err)

	back, err := MetadataFromMap(md.ToMap())
	require.NoError(t, err)
	assert.True(t, md.Equal(back))
}

func TestMetadataEqual(t *testing.T) {
	md1, err := MetadataFromContainer(sampleContainer())
	require.NoError(t, err)
	md2, err := MetadataFromContainer(sampleContainer())
	require.NoError(t, err)

	assert.True(t, md1.Equal(md2))

	require.NoError(t, md2.SetRows(99))
	assert.False(t, md1.Equal(md2))
}
