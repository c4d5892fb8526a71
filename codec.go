package spssconverter

import "sync"

// RawMissingRange is a missing-value interval as the native codec
// represents it, with lo/hi bounds.  The metadata model translates
// these to MissingRange records with low/high bounds.
type RawMissingRange struct {
	Lo float64
	Hi float64
}

// A Container is the native codec's metadata representation for one
// dataset: ordered column name and label lists, per-variable attribute
// maps keyed by variable name, and dataset-level scalars.  It is a
// plain mutable record with no validation of its own; the Metadata and
// ColumnMetadata types are the validated view over it.
type Container struct {
	ColumnNames          []string
	ColumnLabels         []string
	ColumnNamesToLabels  map[string]string
	VariableToLabel      map[string]string
	VariableAlignment    map[string]string
	VariableMeasure      map[string]string
	VariableDisplayWidth map[string]int
	VariableStorageWidth map[string]int

	// Value-label dictionaries, keyed by variable name and by label
	// set name respectively.  Keys of the inner maps are the raw coded
	// values (int64, float64 or string).
	VariableValueLabels map[string]map[interface{}]string
	ValueLabels         map[string]map[interface{}]string

	MissingRanges     map[string][]RawMissingRange
	MissingUserValues map[string][]interface{}

	TableName    string
	FileLabel    string
	FileEncoding string
	Notes        string
	NumberRows   int
}

// NewContainer returns an empty Container with all maps initialized.
func NewContainer() *Container {
	ct := new(Container)
	ct.ensureMaps()
	return ct
}

func (ct *Container) ensureMaps() {
	if ct.ColumnNamesToLabels == nil {
		ct.ColumnNamesToLabels = make(map[string]string)
	}
	if ct.VariableToLabel == nil {
		ct.VariableToLabel = make(map[string]string)
	}
	if ct.VariableAlignment == nil {
		ct.VariableAlignment = make(map[string]string)
	}
	if ct.VariableMeasure == nil {
		ct.VariableMeasure = make(map[string]string)
	}
	if ct.VariableDisplayWidth == nil {
		ct.VariableDisplayWidth = make(map[string]int)
	}
	if ct.VariableStorageWidth == nil {
		ct.VariableStorageWidth = make(map[string]int)
	}
	if ct.VariableValueLabels == nil {
		ct.VariableValueLabels = make(map[string]map[interface{}]string)
	}
	if ct.ValueLabels == nil {
		ct.ValueLabels = make(map[string]map[interface{}]string)
	}
	if ct.MissingRanges == nil {
		ct.MissingRanges = make(map[string][]RawMissingRange)
	}
	if ct.MissingUserValues == nil {
		ct.MissingUserValues = make(map[string][]interface{})
	}
}

// HasColumn reports whether name appears in the container's column
// name list.
func (ct *Container) HasColumn(name string) bool {
	for _, n := range ct.ColumnNames {
		if n == name {
			return true
		}
	}
	return false
}

// ReadOptions controls a codec read.  The zero value reads the whole
// file; use DefaultReadOptions for the conventional defaults.
type ReadOptions struct {
	// Limit is the number of records to read.  Zero or negative reads
	// all records.
	Limit int

	// Offset is the record at which reading starts.
	Offset int

	// IncludeVariables restricts the read to the named variables.
	IncludeVariables []string

	// ExcludeVariables drops the named variables from the result and
	// its metadata.  The exclusion is applied above the codec.
	ExcludeVariables []string

	// MetadataOnly returns no data records but a complete Container.
	MetadataOnly bool

	// ApplyLabels converts coded values to their human-readable
	// labels.
	ApplyLabels bool

	// LabelsAsCategories converts labeled values to categorical
	// (string) columns.  Only meaningful when ApplyLabels is set.
	LabelsAsCategories bool

	// MissingAsNaN returns user-missing values as missing rather than
	// as the sentinel values stored in the file.
	MissingAsNaN bool

	// ConvertDatetimes converts the file's numeric datetime encoding
	// to time values.
	ConvertDatetimes bool

	// DatesAsTime returns date variables as time.Time series rather
	// than as numeric offsets.  Only meaningful when ConvertDatetimes
	// is set.
	DatesAsTime bool
}

// DefaultReadOptions returns the conventional read defaults: labels as
// categories and datetime conversion enabled.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		LabelsAsCategories: true,
		ConvertDatetimes:   true,
	}
}

// WriteSavOptions carries the metadata a codec write should embed in
// the sav file.  A nil WriteSavOptions writes data only.
type WriteSavOptions struct {
	FileLabel     string
	ColumnLabels  []string
	Note          string
	ValueLabels   map[string]map[interface{}]string
	MissingRanges map[string][]RawMissingRange
	DisplayWidths map[string]int
	Measures      map[string]string
}

// A Codec reads and writes the sav binary format.  It is an external
// collaborator: this package never touches the byte layout itself.
//
// ReadSav returns the data as an array of Series together with the
// file's metadata container.  The codec is expected to honor the
// row window (Limit/Offset), IncludeVariables, MetadataOnly,
// ApplyLabels, MissingAsNaN and the datetime options, and to report
// the dataset's native record count in Container.NumberRows
// regardless of windowing.  Variable names that violate the format's
// naming rules cause an error, which is propagated to callers
// unmodified.
//
// WriteSav writes data to path, embedding the metadata in opts when
// opts is non-nil.  When compress is true the zsav representation is
// written.
type Codec interface {
	ReadSav(path string, opts ReadOptions) ([]*Series, *Container, error)
	WriteSav(data []*Series, path string, compress bool, opts *WriteSavOptions) error
}

var (
	codecMu         sync.RWMutex
	registeredCodec Codec
)

// RegisterCodec makes a Codec available to the conversion functions.
// It is typically called from the init function of a codec binding
// package.  Registering a second codec replaces the first.
func RegisterCodec(c Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	registeredCodec = c
}

func activeCodec() (Codec, error) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	if registeredCodec == nil {
		return nil, ErrNoCodec
	}
	return registeredCodec, nil
}
