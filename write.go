package spssconverter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// coerceMetadata accepts the three metadata shapes the writer
// understands: a Metadata instance, a native Container, or a plain
// mapping.  nil passes through as nil.
func coerceMetadata(metadata interface{}) (*Metadata, error) {
	switch x := metadata.(type) {
	case nil:
		return nil, nil
	case *Metadata:
		return x, nil
	case *Container:
		return MetadataFromContainer(x)
	case map[string]interface{}:
		return MetadataFromMap(x)
	default:
		return nil, fmt.Errorf("%w: metadata must be a Metadata, Container, or mapping. Was: %T", ErrInvalidValue, metadata)
	}
}

// savWriteOptions reconstructs the codec's write parameters from a
// Metadata aggregate.
func savWriteOptions(md *Metadata) *WriteSavOptions {
	if md == nil {
		return nil
	}
	ct := md.ToContainer()
	return &WriteSavOptions{
		FileLabel:     ct.FileLabel,
		ColumnLabels:  ct.ColumnLabels,
		Note:          ct.Notes,
		ValueLabels:   ct.VariableValueLabels,
		MissingRanges: ct.MissingRanges,
		DisplayWidths: ct.VariableDisplayWidth,
		Measures:      ct.VariableMeasure,
	}
}

// FromSeries creates a sav dataset from an array of Series.  The
// metadata argument may be nil, a *Metadata, a *Container, or a plain
// mapping; when nil, only the data is written.  When target is nil an
// in-memory buffer holding the sav bytes is returned; otherwise the
// dataset is written to the target (a path or writer) and nil is
// returned.  When compress is true the zsav representation is
// written.
func FromSeries(data []*Series, target interface{}, metadata interface{}, compress bool) (*bytes.Buffer, error) {
	codec, err := activeCodec()
	if err != nil {
		return nil, err
	}
	if err := validateBinaryTarget(target); err != nil {
		return nil, err
	}
	md, err := coerceMetadata(metadata)
	if err != nil {
		return nil, err
	}
	opts := savWriteOptions(md)

	if path, ok := target.(string); ok {
		return nil, codec.WriteSav(data, path, compress, opts)
	}

	// Stage through a scratch file; the codec writes paths only.
	f, err := os.CreateTemp("", "spssconverter-*.sav")
	if err != nil {
		return nil, err
	}
	name := f.Name()
	f.Close()
	defer os.Remove(name)

	if err := codec.WriteSav(data, name, compress, opts); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	if w, ok := target.(io.Writer); ok {
		_, err := w.Write(raw)
		return nil, err
	}
	return bytes.NewBuffer(raw), nil
}

// sourceReader resolves an ingestion source (path string, byte slice,
// or reader) to a reader.  The returned cleanup closes any file the
// function opened.
func sourceReader(src interface{}) (io.Reader, func(), error) {
	none := func() {}
	switch x := src.(type) {
	case string:
		f, err := os.Open(x)
		if err != nil {
			return nil, none, err
		}
		return f, func() { f.Close() }, nil
	case []byte:
		return bytes.NewReader(x), none, nil
	case io.Reader:
		return x, none, nil
	default:
		return nil, none, fmt.Errorf("%w: data must be a filename, byte slice, or reader. Was: %T", ErrInvalidDataFormat, src)
	}
}

// dropIndexColumn removes the unnamed index column that spreadsheet
// and CSV exports sometimes carry.
func dropIndexColumn(data SeriesArray) SeriesArray {
	return data.Drop("Unnamed: 0")
}

// FromCSV converts CSV data into a sav dataset.  A zero delimiter
// means the conventional pipe.
func FromCSV(src interface{}, target interface{}, compress bool, delimiter rune) (*bytes.Buffer, error) {
	r, cleanup, err := sourceReader(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rdr := NewCSVReader(r)
	if delimiter != 0 {
		rdr.Delimiter = delimiter
	}
	data, err := rdr.Read(-1)
	if err != nil {
		return nil, err
	}
	return FromSeries(dropIndexColumn(data), target, nil, compress)
}

// columnNamesFromRecords returns the union of record keys in sorted
// order.  Row objects carry no column order of their own.
func columnNamesFromRecords(records []map[string]interface{}) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// recordsToSeries builds typed Series from row objects.  A column
// whose present values are all numeric becomes a float64 series;
// otherwise it becomes a string series.  Absent and nil entries are
// missing.
func recordsToSeries(names []string, records []map[string]interface{}) ([]*Series, error) {
	out := make([]*Series, len(names))
	for j, name := range names {
		numeric := true
		seen := false
		for _, rec := range records {
			v, ok := rec[name]
			if !ok || v == nil {
				continue
			}
			seen = true
			switch v.(type) {
			case float64, float32, int, int64:
			default:
				numeric = false
			}
		}

		miss := make([]bool, len(records))
		if numeric && seen {
			data := make([]float64, len(records))
			for i, rec := range records {
				v, ok := rec[name]
				if !ok || v == nil {
					miss[i] = true
					continue
				}
				f, err := asFloat(v)
				if err != nil {
					return nil, err
				}
				data[i] = f
			}
			ser, err := NewSeries(name, data, miss)
			if err != nil {
				return nil, err
			}
			out[j] = ser
		} else {
			data := make([]string, len(records))
			for i, rec := range records {
				v, ok := rec[name]
				if !ok || v == nil {
					miss[i] = true
					continue
				}
				data[i] = fmt.Sprintf("%v", v)
			}
			ser, err := NewSeries(name, data, miss)
			if err != nil {
				return nil, err
			}
			out[j] = ser
		}
	}
	return out, nil
}

// parseJSONDataset decodes records- or table-layout JSON into a
// dataset.  Table layout preserves the schema's field order.
func parseJSONDataset(raw []byte, layout Layout) ([]*Series, error) {
	if layout == LayoutTable {
		var doc tableDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		names := make([]string, len(doc.Schema.Fields))
		for i, fld := range doc.Schema.Fields {
			names[i] = fld.Name
		}
		if len(names) == 0 {
			names = columnNamesFromRecords(doc.Data)
		}
		return recordsToSeries(names, doc.Data)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return recordsToSeries(columnNamesFromRecords(records), records)
}

// FromJSON converts JSON data in the records or table layout into a
// sav dataset.
func FromJSON(src interface{}, target interface{}, layout Layout, compress bool) (*bytes.Buffer, error) {
	if !layout.valid() {
		return nil, fmt.Errorf("%w: layout must be either \"records\" or \"table\". Was: %q", ErrInvalidLayout, layout.String())
	}

	r, cleanup, err := sourceReader(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, err := parseJSONDataset(raw, layout)
	if err != nil {
		return nil, err
	}
	return FromSeries(data, target, nil, compress)
}

// FromYAML converts YAML data in the records or table layout into a
// sav dataset.
func FromYAML(src interface{}, target interface{}, layout Layout, compress bool) (*bytes.Buffer, error) {
	if !layout.valid() {
		return nil, fmt.Errorf("%w: layout must be either \"records\" or \"table\". Was: %q", ErrInvalidLayout, layout.String())
	}

	r, cleanup, err := sourceReader(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// Normalize through JSON so both layouts share one decode path.
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	data, err := parseJSONDataset(asJSON, layout)
	if err != nil {
		return nil, err
	}
	return FromSeries(data, target, nil, compress)
}

// FromMap converts plain Go structures into a sav dataset.  Accepted
// shapes: a slice of row mappings (records), or a mapping from column
// name to a slice of values (columns).
func FromMap(src interface{}, target interface{}, compress bool) (*bytes.Buffer, error) {
	switch x := src.(type) {
	case []map[string]interface{}:
		data, err := recordsToSeries(columnNamesFromRecords(x), x)
		if err != nil {
			return nil, err
		}
		return FromSeries(data, target, nil, compress)
	case map[string][]interface{}:
		names := make([]string, 0, len(x))
		for name := range x {
			names = append(names, name)
		}
		sort.Strings(names)

		nrow := 0
		for _, col := range x {
			if len(col) > nrow {
				nrow = len(col)
			}
		}
		records := make([]map[string]interface{}, nrow)
		for i := 0; i < nrow; i++ {
			rec := make(map[string]interface{}, len(names))
			for _, name := range names {
				if i < len(x[name]) {
					rec[name] = x[name][i]
				}
			}
			records[i] = rec
		}
		data, err := recordsToSeries(names, records)
		if err != nil {
			return nil, err
		}
		return FromSeries(data, target, nil, compress)
	default:
		return nil, fmt.Errorf("%w: data must be a slice of row mappings or a column mapping. Was: %T", ErrInvalidDataFormat, src)
	}
}

// FromExcel converts xlsx data into a sav dataset.  An empty sheet
// name selects the workbook's first sheet.
func FromExcel(src interface{}, target interface{}, compress bool, sheet string) (*bytes.Buffer, error) {
	r, cleanup, err := sourceReader(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q appears to be empty", ErrInvalidDataFormat, sheet)
	}

	data, err := seriesFromRows(rows[0], rows[1:], "NaN")
	if err != nil {
		return nil, err
	}
	return FromSeries(dropIndexColumn(data), target, nil, compress)
}

// ApplyMetadata returns a copy of the dataset updated to reflect the
// metadata: variables with value-label dictionaries have their coded
// values replaced by labels.  When asCategory is true the labeled
// columns are materialized as categorical (string) series; Go has no
// separate categorical type, so both settings produce string series
// and the flag is retained for contract compatibility.  The metadata
// argument accepts the same three shapes as FromSeries.
func ApplyMetadata(data []*Series, metadata interface{}, asCategory bool) ([]*Series, error) {
	md, err := coerceMetadata(metadata)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("%w: metadata must be a Metadata, Container, or mapping. Was: nil", ErrInvalidValue)
	}

	out := make([]*Series, len(data))
	for i, ser := range data {
		if c, ok := md.Column(ser.Name); ok && c.ValueLabels() != nil {
			out[i] = ser.MapValues(c.ValueLabels())
		} else {
			out[i] = ser
		}
	}
	return out, nil
}
