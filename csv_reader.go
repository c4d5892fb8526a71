package spssconverter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A CSVReader reads a dataset in CSV format, infers the datatype of
// each column, and returns the columns as Series objects.  It is the
// ingestion side of the CSV bridge.
type CSVReader struct {

	// The delimiter used between columns.  Defaults to '|', the
	// writer-side convention.
	Delimiter rune

	// Text treated as a missing value.  Defaults to "NaN".
	NullText string

	// Skip this number of rows before reading the header.
	SkipRows int

	// If true, there is a header to read, otherwise default column
	// names are used.
	HasHeader bool

	// The column names, in the order that they appear in the file.
	// Can be set by the caller.
	ColumnNames []string

	// User-specified data types (maps column name to "float64" or
	// "string").
	TypeHintsName map[string]string

	// User-specified data types (indexed by column number).
	TypeHintsPos []string

	// The data type for each column.
	DataTypes []string

	initRun bool

	// Cached lines used for type sniffing.
	lines [][]string

	csvreader *csv.Reader
	reader    io.Reader
}

// NewCSVReader returns a CSVReader that reads CSV data from r, with
// type inference.
func NewCSVReader(r io.Reader) *CSVReader {
	rdr := &CSVReader{
		Delimiter: '|',
		NullText:  "NaN",
		HasHeader: true,
		reader:    r,
	}
	return rdr
}

func (rdr *CSVReader) getColumnNames() {
	if rdr.HasHeader {
		rdr.ColumnNames = rdr.lines[0]
		rdr.lines = rdr.lines[1:]
		return
	}

	// Default names
	m := len(rdr.lines[0])
	rdr.ColumnNames = make([]string, m)
	for k := 0; k < m; k++ {
		rdr.ColumnNames[k] = fmt.Sprintf("Column %d", k+1)
	}
}

func (rdr *CSVReader) sniffTypes() {
	nFloats, nObs := countFloats(rdr.lines, rdr.NullText)

	rdr.DataTypes = make([]string, len(rdr.ColumnNames))
	for j, col := range rdr.ColumnNames {

		// Check for a type hint
		t := "infer"
		if tm, ok := rdr.TypeHintsName[col]; ok {
			t = tm
		} else if len(rdr.TypeHintsPos) >= j+1 && rdr.TypeHintsPos[j] != "" {
			t = rdr.TypeHintsPos[j]
		}

		if t != "infer" {
			rdr.DataTypes[j] = t
		} else if j < len(nFloats) && nFloats[j] == nObs[j] && nObs[j] > 0 {
			rdr.DataTypes[j] = "float64"
		} else {
			rdr.DataTypes[j] = "string"
		}
	}
}

// init reads and caches the leading lines so that column names and
// types can be determined before the main read.
func (rdr *CSVReader) init() error {
	rdr.csvreader = csv.NewReader(rdr.reader)
	rdr.csvreader.FieldsPerRecord = -1
	if rdr.Delimiter != 0 {
		rdr.csvreader.Comma = rdr.Delimiter
	}

	rdr.lines = make([][]string, 0, 100)
	for k := 0; k < 100+rdr.SkipRows; k++ {
		v, err := rdr.csvreader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if k >= rdr.SkipRows {
			rdr.lines = append(rdr.lines, v)
		}
	}

	if len(rdr.lines) == 0 {
		return fmt.Errorf("%w: file appears to be empty", ErrInvalidDataFormat)
	}

	if rdr.ColumnNames == nil {
		rdr.getColumnNames()
	}

	if rdr.DataTypes == nil {
		rdr.sniffTypes()
	}

	rdr.initRun = true
	return nil
}

// Read reads up to lines rows of data and returns the results as an
// array of Series objects.  If lines is negative the whole file is
// read.  Data types of the Series objects are inferred from the file;
// use type hints in the CSVReader struct to control them directly.
func (rdr *CSVReader) Read(lines int) ([]*Series, error) {
	if !rdr.initRun {
		if err := rdr.init(); err != nil {
			return nil, err
		}
	}

	ncol := len(rdr.ColumnNames)
	dataArray := make([]interface{}, ncol)
	miss := make([][]bool, ncol)
	for j := range rdr.ColumnNames {
		switch rdr.DataTypes[j] {
		case "float64":
			dataArray[j] = make([]float64, 0, 100)
		default:
			dataArray[j] = make([]string, 0, 100)
		}
	}

	numRows := 0
	for {
		if lines > 0 && numRows >= lines {
			break
		}

		var line []string
		var err error
		if len(rdr.lines) > 0 {
			line = rdr.lines[0]
			rdr.lines = rdr.lines[1:]
		} else {
			line, err = rdr.csvreader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, err
			}
		}

		for j := range rdr.ColumnNames {
			var cell string
			if j < len(line) {
				cell = line[j]
			}
			isNull := cell == "" || cell == rdr.NullText

			switch rdr.DataTypes[j] {
			case "float64":
				x, perr := strconv.ParseFloat(cell, 64)
				if isNull || perr != nil {
					dataArray[j] = append(dataArray[j].([]float64), 0)
					miss[j] = append(miss[j], true)
				} else {
					dataArray[j] = append(dataArray[j].([]float64), x)
					miss[j] = append(miss[j], false)
				}
			default:
				dataArray[j] = append(dataArray[j].([]string), cell)
				miss[j] = append(miss[j], isNull)
			}
		}

		numRows++
	}

	dataSeries := make([]*Series, ncol)
	for j := 0; j < ncol; j++ {
		ser, err := NewSeries(rdr.ColumnNames[j], dataArray[j], miss[j])
		if err != nil {
			return nil, err
		}
		dataSeries[j] = ser
	}
	return dataSeries, nil
}

// countFloats returns the number of cells of each column that can be
// converted to float64 type, and the number of non-blank cells.
func countFloats(lines [][]string, nullText string) ([]int, []int) {

	// Find the longest record in the cache
	m := 0
	for _, v := range lines {
		if len(v) > m {
			m = len(v)
		}
	}

	numFloats := make([]int, m)
	numObs := make([]int, m)

	for _, x := range lines {
		for j, y := range x {
			y = strings.TrimSpace(y)
			// Skip blanks and nulls
			if len(y) == 0 || y == nullText {
				continue
			}
			numObs[j]++
			if _, err := strconv.ParseFloat(y, 64); err == nil {
				numFloats[j]++
			}
		}
	}

	return numFloats, numObs
}

// seriesFromRows builds typed Series from pre-split text rows, using
// the same type sniffing as the CSV reader.  It is shared with the
// spreadsheet ingestion path.
func seriesFromRows(names []string, rows [][]string, nullText string) ([]*Series, error) {
	nFloats, nObs := countFloats(rows, nullText)

	ncol := len(names)
	out := make([]*Series, ncol)
	for j := 0; j < ncol; j++ {
		isFloat := j < len(nFloats) && nFloats[j] == nObs[j] && nObs[j] > 0

		miss := make([]bool, len(rows))
		if isFloat {
			data := make([]float64, len(rows))
			for i, row := range rows {
				var cell string
				if j < len(row) {
					cell = row[j]
				}
				x, err := strconv.ParseFloat(cell, 64)
				if cell == "" || cell == nullText || err != nil {
					miss[i] = true
				} else {
					data[i] = x
				}
			}
			ser, err := NewSeries(names[j], data, miss)
			if err != nil {
				return nil, err
			}
			out[j] = ser
		} else {
			data := make([]string, len(rows))
			for i, row := range rows {
				var cell string
				if j < len(row) {
					cell = row[j]
				}
				data[i] = cell
				miss[i] = cell == "" || cell == nullText
			}
			ser, err := NewSeries(names[j], data, miss)
			if err != nil {
				return nil, err
			}
			out[j] = ser
		}
	}
	return out, nil
}
