package spssconverter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// CSVOptions controls the CSV projection of a dataset.
type CSVOptions struct {
	IncludeHeader  bool
	Delimiter      rune
	NullText       string
	Quote          rune
	Escape         rune
	LineTerminator string
	Decimal        rune
}

// DefaultCSVOptions returns the conventional CSV settings: header on,
// pipe delimiter, NaN null text, single-quote wrapper, backslash
// escape, CRLF line terminator, point decimal.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		IncludeHeader:  true,
		Delimiter:      '|',
		NullText:       "NaN",
		Quote:          '\'',
		Escape:         '\\',
		LineTerminator: "\r\n",
		Decimal:        '.',
	}
}

// JSONOptions controls the JSON/YAML/map projections of a dataset.
type JSONOptions struct {
	// Layout selects records (a flat array of row objects) or table
	// (a schema envelope plus row objects).
	Layout Layout

	// DoublePrecision is the number of places beyond the decimal
	// point kept for floating point values.
	DoublePrecision int
}

// DefaultJSONOptions returns the records layout with ten decimal
// places of float precision.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Layout: LayoutRecords, DoublePrecision: 10}
}

// ExcelOptions controls the spreadsheet projection of a dataset.
type ExcelOptions struct {
	SheetName     string
	StartRow      int
	StartColumn   int
	NullText      string
	IncludeHeader bool
}

// DefaultExcelOptions returns the conventional spreadsheet settings.
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:     "Sheet1",
		NullText:      "NaN",
		IncludeHeader: true,
	}
}

// sourcePath resolves a source argument to a path the codec can read.
// Accepted shapes: a path string, a byte slice, or an io.Reader.
// Non-path sources are staged through an exclusively owned scratch
// file; the returned cleanup removes it and must be called
// unconditionally.
func sourcePath(src interface{}) (string, func(), error) {
	none := func() {}
	switch x := src.(type) {
	case string:
		return x, none, nil
	case []byte:
		return stageTempFile(x)
	case io.Reader:
		raw, err := io.ReadAll(x)
		if err != nil {
			return "", none, err
		}
		return stageTempFile(raw)
	default:
		return "", none, fmt.Errorf("%w: data must be a filename, byte slice, or reader. Was: %T", ErrInvalidDataFormat, src)
	}
}

func stageTempFile(raw []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "spssconverter-*.sav")
	if err != nil {
		return "", func() {}, err
	}
	name := f.Name()
	cleanup := func() { os.Remove(name) }
	if _, err := f.Write(raw); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return name, cleanup, nil
}

// validateTextTarget rejects target shapes outside the accepted union
// (nil, path string, io.Writer) before any read occurs.
func validateTextTarget(target interface{}) error {
	switch target.(type) {
	case nil, string, io.Writer:
		return nil
	default:
		return fmt.Errorf("%w: target must be a filename, writer, or nil. Was: %T", ErrInvalidDataFormat, target)
	}
}

// deliverText returns text when target is nil; otherwise it writes
// text to the target and returns the empty string.
func deliverText(target interface{}, text string) (string, error) {
	switch x := target.(type) {
	case nil:
		return text, nil
	case string:
		return "", os.WriteFile(x, []byte(text), 0o644)
	case io.Writer:
		_, err := io.WriteString(x, text)
		return "", err
	default:
		return "", fmt.Errorf("%w: target must be a filename, writer, or nil. Was: %T", ErrInvalidDataFormat, target)
	}
}

// readSav loads a source through the registered codec, applies the
// variable exclusion above the codec, and returns the dataset with
// its validated metadata.
func readSav(src interface{}, opts ReadOptions) (SeriesArray, *Metadata, error) {
	codec, err := activeCodec()
	if err != nil {
		return nil, nil, err
	}

	path, cleanup, err := sourcePath(src)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	codecOpts := opts
	codecOpts.ExcludeVariables = nil

	data, ct, err := codec.ReadSav(path, codecOpts)
	if err != nil {
		return nil, nil, err
	}

	md, err := MetadataFromContainer(ct)
	if err != nil {
		return nil, nil, err
	}

	dataset := SeriesArray(data)
	if len(opts.ExcludeVariables) > 0 {
		dataset = dataset.Drop(opts.ExcludeVariables...)
		for _, name := range opts.ExcludeVariables {
			md.DropColumn(name)
		}
	}

	return dataset, md, nil
}

// GetMetadata retrieves the metadata that describes the coded
// representation of the data, its formatting information, and the
// related human-readable labels, without materializing any records.
func GetMetadata(src interface{}) (*Metadata, error) {
	opts := DefaultReadOptions()
	opts.MetadataOnly = true
	_, md, err := readSav(src, opts)
	return md, err
}

// ToSeries reads sav data and returns the dataset as an array of
// Series together with its Metadata.
func ToSeries(src interface{}, opts ReadOptions) ([]*Series, *Metadata, error) {
	data, md, err := readSav(src, opts)
	if err != nil {
		return nil, nil, err
	}
	return data, md, nil
}

// csvField renders one CSV field, wrapping and escaping when the
// value contains the delimiter, the quote character, or a line break.
func csvField(s string, opts CSVOptions) string {
	needsQuote := strings.ContainsRune(s, opts.Delimiter) ||
		strings.ContainsRune(s, opts.Quote) ||
		strings.ContainsAny(s, "\r\n")
	if !needsQuote {
		return s
	}
	quoted := strings.ReplaceAll(s, string(opts.Quote), string(opts.Escape)+string(opts.Quote))
	return string(opts.Quote) + quoted + string(opts.Quote)
}

func renderCSV(data SeriesArray, opts CSVOptions) string {
	var sb strings.Builder

	writeRow := func(cells []string) {
		for j, cell := range cells {
			if j > 0 {
				sb.WriteRune(opts.Delimiter)
			}
			sb.WriteString(csvField(cell, opts))
		}
		sb.WriteString(opts.LineTerminator)
	}

	if opts.IncludeHeader {
		writeRow(data.ColumnNames())
	}

	nrow := data.NumRows()
	row := make([]string, len(data))
	for i := 0; i < nrow; i++ {
		for j, ser := range data {
			row[j] = ser.CellString(i, opts.NullText, opts.Decimal)
		}
		writeRow(row)
	}
	return sb.String()
}

// ToCSV converts sav data into a CSV representation where each row is
// one record.  When target is nil the CSV text is returned; otherwise
// it is written to the target (a path or writer) and the empty string
// is returned.
func ToCSV(src interface{}, target interface{}, csvOpts CSVOptions, opts ReadOptions) (string, error) {
	if err := validateTextTarget(target); err != nil {
		return "", err
	}
	data, _, err := readSav(src, opts)
	if err != nil {
		return "", err
	}
	return deliverText(target, renderCSV(data, csvOpts))
}

func roundTo(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// buildRecords projects the dataset as row objects with float values
// rounded to the requested precision.
func buildRecords(data SeriesArray, precision int) []map[string]interface{} {
	records := data.Records()
	for _, rec := range records {
		for k, v := range rec {
			if f, ok := v.(float64); ok {
				rec[k] = roundTo(f, precision)
			}
		}
	}
	return records
}

type tableField struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type tableSchema struct {
	Fields []tableField `json:"fields" yaml:"fields"`
}

type tableDocument struct {
	Schema tableSchema              `json:"schema" yaml:"schema"`
	Data   []map[string]interface{} `json:"data" yaml:"data"`
}

func fieldType(ser *Series) string {
	switch ser.Data().(type) {
	case []float64:
		return "number"
	case []int64:
		return "integer"
	case []time.Time:
		return "datetime"
	default:
		return "string"
	}
}

func buildTable(data SeriesArray, precision int) tableDocument {
	fields := make([]tableField, len(data))
	for j, ser := range data {
		fields[j] = tableField{Name: ser.Name, Type: fieldType(ser)}
	}
	return tableDocument{
		Schema: tableSchema{Fields: fields},
		Data:   buildRecords(data, precision),
	}
}

// layoutDocument builds the serializable structure for the requested
// layout.
func layoutDocument(data SeriesArray, jsonOpts JSONOptions) (interface{}, error) {
	if !jsonOpts.Layout.valid() {
		return nil, fmt.Errorf("%w: layout must be either \"records\" or \"table\". Was: %q", ErrInvalidLayout, jsonOpts.Layout.String())
	}
	if jsonOpts.Layout == LayoutTable {
		return buildTable(data, jsonOpts.DoublePrecision), nil
	}
	return buildRecords(data, jsonOpts.DoublePrecision), nil
}

// ToJSON converts sav data into a JSON representation using the
// records or table layout.  When target is nil the JSON text is
// returned; otherwise it is written to the target and the empty
// string is returned.  An unrecognized layout fails before any read
// occurs.
func ToJSON(src interface{}, target interface{}, jsonOpts JSONOptions, opts ReadOptions) (string, error) {
	if err := validateTextTarget(target); err != nil {
		return "", err
	}
	if !jsonOpts.Layout.valid() {
		return "", fmt.Errorf("%w: layout must be either \"records\" or \"table\". Was: %q", ErrInvalidLayout, jsonOpts.Layout.String())
	}

	data, _, err := readSav(src, opts)
	if err != nil {
		return "", err
	}

	doc, err := layoutDocument(data, jsonOpts)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return deliverText(target, string(raw))
}

// ToYAML converts sav data into a YAML representation of the same
// records/table structure as ToJSON.
func ToYAML(src interface{}, target interface{}, jsonOpts JSONOptions, opts ReadOptions) (string, error) {
	if err := validateTextTarget(target); err != nil {
		return "", err
	}
	if !jsonOpts.Layout.valid() {
		return "", fmt.Errorf("%w: layout must be either \"records\" or \"table\". Was: %q", ErrInvalidLayout, jsonOpts.Layout.String())
	}

	data, _, err := readSav(src, opts)
	if err != nil {
		return "", err
	}

	doc, err := layoutDocument(data, jsonOpts)
	if err != nil {
		return "", err
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return deliverText(target, string(raw))
}

// ToMap converts sav data into plain Go structures: a slice of row
// mappings for the records layout, or a schema-plus-data mapping for
// the table layout.
func ToMap(src interface{}, layout Layout, opts ReadOptions) (interface{}, error) {
	if !layout.valid() {
		return nil, fmt.Errorf("%w: layout must be either \"records\" or \"table\". Was: %q", ErrInvalidLayout, layout.String())
	}

	data, _, err := readSav(src, opts)
	if err != nil {
		return nil, err
	}

	records := buildRecords(data, 10)
	if layout == LayoutRecords {
		return records, nil
	}

	fields := make([]map[string]interface{}, len(data))
	for j, ser := range data {
		fields[j] = map[string]interface{}{"name": ser.Name, "type": fieldType(ser)}
	}
	return map[string]interface{}{
		"schema": map[string]interface{}{"fields": fields},
		"data":   records,
	}, nil
}

// validateBinaryTarget rejects workbook and sav target shapes outside
// the accepted union (nil, path string, io.Writer).
func validateBinaryTarget(target interface{}) error {
	switch target.(type) {
	case nil, string, io.Writer:
		return nil
	default:
		return fmt.Errorf("%w: target must be a filename, writer, or nil. Was: %T", ErrInvalidDataFormat, target)
	}
}

// ToExcel converts sav data into an xlsx workbook.  When target is
// nil an in-memory buffer holding the workbook is returned; otherwise
// the workbook is written to the target (a path or writer) and nil is
// returned.
func ToExcel(src interface{}, target interface{}, excelOpts ExcelOptions, opts ReadOptions) (*bytes.Buffer, error) {
	if err := validateBinaryTarget(target); err != nil {
		return nil, err
	}

	data, _, err := readSav(src, opts)
	if err != nil {
		return nil, err
	}

	sheet := excelOpts.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}

	row := excelOpts.StartRow + 1
	if excelOpts.IncludeHeader {
		for j, name := range data.ColumnNames() {
			cell, err := excelize.CoordinatesToCellName(excelOpts.StartColumn+j+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return nil, err
			}
		}
		row++
	}

	nrow := data.NumRows()
	for i := 0; i < nrow; i++ {
		for j, ser := range data {
			cell, err := excelize.CoordinatesToCellName(excelOpts.StartColumn+j+1, row)
			if err != nil {
				return nil, err
			}
			var v interface{}
			if ser.IsMissing(i) {
				v = excelOpts.NullText
			} else {
				v = ser.Value(i)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	switch x := target.(type) {
	case nil:
		return f.WriteToBuffer()
	case string:
		return nil, f.SaveAs(x)
	case io.Writer:
		_, err := f.WriteTo(x)
		return nil, err
	}
	return nil, nil
}
