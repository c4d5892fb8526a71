package spssconverter

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Alignment classifies how a variable's values are aligned when
// displayed.
type Alignment int

const (
	AlignmentUnknown Alignment = iota
	AlignmentLeft
	AlignmentCenter
	AlignmentRight
)

var alignmentNames = map[Alignment]string{
	AlignmentUnknown: "unknown",
	AlignmentLeft:    "left",
	AlignmentCenter:  "center",
	AlignmentRight:   "right",
}

func (a Alignment) String() string {
	if s, ok := alignmentNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

func (a Alignment) valid() bool {
	_, ok := alignmentNames[a]
	return ok
}

// ParseAlignment converts a case-insensitive string to an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	ls := strings.ToLower(s)
	for a, name := range alignmentNames {
		if name == ls {
			return a, nil
		}
	}
	return AlignmentUnknown, fmt.Errorf("%w: value (%q) is not a recognized alignment", ErrInvalidValue, s)
}

// Measure classifies a variable's statistical role.
type Measure int

const (
	MeasureUnknown Measure = iota
	MeasureNominal
	MeasureOrdinal
	MeasureScale
)

var measureNames = map[Measure]string{
	MeasureUnknown: "unknown",
	MeasureNominal: "nominal",
	MeasureOrdinal: "ordinal",
	MeasureScale:   "scale",
}

func (m Measure) String() string {
	if s, ok := measureNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Measure(%d)", int(m))
}

func (m Measure) valid() bool {
	_, ok := measureNames[m]
	return ok
}

// ParseMeasure converts a case-insensitive string to a Measure.
func ParseMeasure(s string) (Measure, error) {
	ls := strings.ToLower(s)
	for m, name := range measureNames {
		if name == ls {
			return m, nil
		}
	}
	return MeasureUnknown, fmt.Errorf("%w: value (%q) is not a recognized measure", ErrInvalidValue, s)
}

// Layout selects the shape of tabular JSON/YAML/map serializations:
// a flat array of row objects, or a schema-plus-rows envelope.
type Layout int

const (
	LayoutRecords Layout = iota
	LayoutTable
)

func (l Layout) String() string {
	switch l {
	case LayoutRecords:
		return "records"
	case LayoutTable:
		return "table"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

func (l Layout) valid() bool {
	return l == LayoutRecords || l == LayoutTable
}

// ParseLayout converts a case-insensitive string to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "records":
		return LayoutRecords, nil
	case "table":
		return LayoutTable, nil
	}
	return LayoutRecords, fmt.Errorf("%w: layout must be either \"records\" or \"table\", was %q", ErrInvalidLayout, s)
}

// A MissingRange is a numeric interval whose contained values are
// treated as missing.
type MissingRange struct {
	Low  float64
	High float64
}

// ColumnMetadata describes one variable of a sav dataset.  All fields
// are validated on assignment; an instance can never hold a field that
// violates its constraint.
type ColumnMetadata struct {
	name          string
	label         string
	alignment     Alignment
	measure       Measure
	displayWidth  int
	storageWidth  int
	valueLabels   map[interface{}]string
	missingRanges []MissingRange
	missingValues []interface{}
}

// Name returns the variable name.
func (c *ColumnMetadata) Name() string { return c.name }

// SetName validates and assigns the variable name.  Empty is allowed
// and means unset.
func (c *ColumnMetadata) SetName(name string) error {
	if err := validateVariableName(name, true); err != nil {
		return err
	}
	c.name = name
	return nil
}

// Label returns the human-readable label, or the empty string when
// absent.
func (c *ColumnMetadata) Label() string { return c.label }

// SetLabel assigns the variable label.
func (c *ColumnMetadata) SetLabel(label string) { c.label = label }

// Alignment returns the display alignment.
func (c *ColumnMetadata) Alignment() Alignment { return c.alignment }

// SetAlignment assigns the display alignment.
func (c *ColumnMetadata) SetAlignment(a Alignment) error {
	if !a.valid() {
		return fmt.Errorf("%w: value (%d) is not a recognized alignment", ErrInvalidValue, int(a))
	}
	c.alignment = a
	return nil
}

// Measure returns the measurement classification.
func (c *ColumnMetadata) Measure() Measure { return c.measure }

// SetMeasure assigns the measurement classification.
func (c *ColumnMetadata) SetMeasure(m Measure) error {
	if !m.valid() {
		return fmt.Errorf("%w: value (%d) is not a recognized measure", ErrInvalidValue, int(m))
	}
	c.measure = m
	return nil
}

// DisplayWidth returns the maximum width at which values are
// displayed.
func (c *ColumnMetadata) DisplayWidth() int { return c.displayWidth }

// SetDisplayWidth assigns the display width, which must not be
// negative.
func (c *ColumnMetadata) SetDisplayWidth(w int) error {
	if err := validateNonNegative("display_width", w); err != nil {
		return err
	}
	c.displayWidth = w
	return nil
}

// StorageWidth returns the stored width of the variable's values.
func (c *ColumnMetadata) StorageWidth() int { return c.storageWidth }

// SetStorageWidth assigns the storage width, which must not be
// negative.
func (c *ColumnMetadata) SetStorageWidth(w int) error {
	if err := validateNonNegative("storage_width", w); err != nil {
		return err
	}
	c.storageWidth = w
	return nil
}

// ValueLabels returns the raw-code to label dictionary, or nil for
// variables whose values are not coded.
func (c *ColumnMetadata) ValueLabels() map[interface{}]string { return c.valueLabels }

// SetValueLabels assigns the value-label dictionary.  Keys are
// normalized (integer types collapse to int64); an empty map
// normalizes to absent.
func (c *ColumnMetadata) SetValueLabels(labels map[interface{}]string) error {
	if len(labels) == 0 {
		c.valueLabels = nil
		return nil
	}
	normalized := make(map[interface{}]string, len(labels))
	for k, v := range labels {
		key, err := normalizeValueKey(k)
		if err != nil {
			return err
		}
		normalized[key] = v
	}
	c.valueLabels = normalized
	return nil
}

// MissingRanges returns the missing-value intervals, or nil when none
// are defined.
func (c *ColumnMetadata) MissingRanges() []MissingRange { return c.missingRanges }

// SetMissingRanges assigns the missing-value intervals.  An empty
// sequence normalizes to absent.
func (c *ColumnMetadata) SetMissingRanges(ranges []MissingRange) error {
	if len(ranges) == 0 {
		c.missingRanges = nil
		return nil
	}
	c.missingRanges = append([]MissingRange(nil), ranges...)
	return nil
}

// MissingValues returns the discrete missing-value sentinels (int64 or
// string values), or nil when none are defined.
func (c *ColumnMetadata) MissingValues() []interface{} { return c.missingValues }

// SetMissingValues assigns the discrete missing-value sentinels.  A
// bare string or integer is normalized into a single-element sequence;
// an empty sequence normalizes to absent.
func (c *ColumnMetadata) SetMissingValues(value interface{}) error {
	var items []interface{}
	switch x := value.(type) {
	case nil:
		c.missingValues = nil
		return nil
	case []interface{}:
		items = x
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	case []int:
		for _, n := range x {
			items = append(items, n)
		}
	case []int64:
		for _, n := range x {
			items = append(items, n)
		}
	default:
		items = []interface{}{value}
	}
	if len(items) == 0 {
		c.missingValues = nil
		return nil
	}
	validated := make([]interface{}, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case string:
			validated = append(validated, x)
		default:
			n, err := asInt(item)
			if err != nil {
				return fmt.Errorf("%w: missing value must be a string or integer, was %T", ErrInvalidValue, item)
			}
			validated = append(validated, int64(n))
		}
	}
	c.missingValues = validated
	return nil
}

// parseValueLabels coerces a loosely typed mapping value into a
// value-label dictionary.
func parseValueLabels(v interface{}) (map[interface{}]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case map[interface{}]string:
		return x, nil
	case map[interface{}]interface{}:
		out := make(map[interface{}]string, len(x))
		for k, item := range x {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	case map[string]string:
		out := make(map[interface{}]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[interface{}]string, len(x))
		for k, item := range x {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: value_metadata must be a mapping, was %T", ErrInvalidValue, v)
	}
}

// parseMissingRanges coerces a loosely typed mapping value into
// missing-range records.  Each record requires both a low and a high
// bound.
func parseMissingRanges(v interface{}) ([]MissingRange, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []MissingRange:
		return x, nil
	case []map[string]interface{}:
		items := make([]interface{}, len(x))
		for i, m := range x {
			items[i] = m
		}
		return parseMissingRanges(items)
	case []interface{}:
		out := make([]MissingRange, 0, len(x))
		for _, item := range x {
			switch rec := item.(type) {
			case MissingRange:
				out = append(out, rec)
			case map[string]interface{}:
				lowRaw, hasLow := rec["low"]
				highRaw, hasHigh := rec["high"]
				if !hasLow || !hasHigh {
					return nil, fmt.Errorf("%w: missing_range_metadata requires a \"high\" and \"low\" boundary to be defined", ErrInvalidValue)
				}
				low, err := asFloat(lowRaw)
				if err != nil {
					return nil, err
				}
				high, err := asFloat(highRaw)
				if err != nil {
					return nil, err
				}
				out = append(out, MissingRange{Low: low, High: high})
			default:
				return nil, fmt.Errorf("%w: missing_range_metadata entries must be mappings, was %T", ErrInvalidValue, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: missing_range_metadata must be a sequence, was %T", ErrInvalidValue, v)
	}
}

// ColumnMetadataFromMap builds a ColumnMetadata from a plain mapping.
// Recognized keys update the corresponding field through its setter;
// missing keys leave the field at its default; unknown keys are
// ignored.
func ColumnMetadataFromMap(m map[string]interface{}) (*ColumnMetadata, error) {
	c := new(ColumnMetadata)
	if v, ok := m["name"]; ok {
		s, err := asString(v)
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		if err := c.SetName(s); err != nil {
			return nil, err
		}
	}
	if v, ok := m["label"]; ok {
		s, err := asString(v)
		if err != nil {
			return nil, fmt.Errorf("label: %w", err)
		}
		c.SetLabel(s)
	}
	if v, ok := m["alignment"]; ok {
		a, err := coerceAlignment(v)
		if err != nil {
			return nil, err
		}
		if err := c.SetAlignment(a); err != nil {
			return nil, err
		}
	}
	if v, ok := m["measure"]; ok {
		me, err := coerceMeasure(v)
		if err != nil {
			return nil, err
		}
		if err := c.SetMeasure(me); err != nil {
			return nil, err
		}
	}
	if v, ok := m["display_width"]; ok {
		w, err := asInt(v)
		if err != nil {
			return nil, fmt.Errorf("display_width: %w", err)
		}
		if err := c.SetDisplayWidth(w); err != nil {
			return nil, err
		}
	}
	if v, ok := m["storage_width"]; ok {
		w, err := asInt(v)
		if err != nil {
			return nil, fmt.Errorf("storage_width: %w", err)
		}
		if err := c.SetStorageWidth(w); err != nil {
			return nil, err
		}
	}
	if v, ok := m["value_metadata"]; ok {
		labels, err := parseValueLabels(v)
		if err != nil {
			return nil, err
		}
		if err := c.SetValueLabels(labels); err != nil {
			return nil, err
		}
	}
	if v, ok := m["missing_range_metadata"]; ok {
		ranges, err := parseMissingRanges(v)
		if err != nil {
			return nil, err
		}
		if err := c.SetMissingRanges(ranges); err != nil {
			return nil, err
		}
	}
	if v, ok := m["missing_value_metadata"]; ok {
		if err := c.SetMissingValues(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func coerceAlignment(v interface{}) (Alignment, error) {
	switch x := v.(type) {
	case Alignment:
		return x, nil
	case string:
		return ParseAlignment(x)
	default:
		return AlignmentUnknown, fmt.Errorf("%w: alignment must be a string, was %T", ErrInvalidValue, v)
	}
}

func coerceMeasure(v interface{}) (Measure, error) {
	switch x := v.(type) {
	case Measure:
		return x, nil
	case string:
		return ParseMeasure(x)
	default:
		return MeasureUnknown, fmt.Errorf("%w: measure must be a string, was %T", ErrInvalidValue, v)
	}
}

// ColumnMetadataFromContainer extracts the metadata for the named
// variable from a native metadata container.  Fields the container
// does not carry are left at their defaults.  The name must appear in
// the container's column list.
func ColumnMetadataFromContainer(name string, ct *Container) (*ColumnMetadata, error) {
	if err := validateVariableName(name, false); err != nil {
		return nil, err
	}
	if !ct.HasColumn(name) {
		return nil, fmt.Errorf("%w: column name (%s) not found in container", ErrColumnNotFound, name)
	}

	c := new(ColumnMetadata)
	if err := c.SetName(name); err != nil {
		return nil, err
	}
	if label, ok := ct.ColumnNamesToLabels[name]; ok {
		c.SetLabel(label)
	}
	if s, ok := ct.VariableAlignment[name]; ok {
		a, err := ParseAlignment(s)
		if err != nil {
			return nil, err
		}
		c.alignment = a
	}
	if s, ok := ct.VariableMeasure[name]; ok {
		m, err := ParseMeasure(s)
		if err != nil {
			return nil, err
		}
		c.measure = m
	}
	if w, ok := ct.VariableDisplayWidth[name]; ok {
		if err := c.SetDisplayWidth(w); err != nil {
			return nil, err
		}
	}
	if w, ok := ct.VariableStorageWidth[name]; ok {
		if err := c.SetStorageWidth(w); err != nil {
			return nil, err
		}
	}
	if labels, ok := ct.VariableValueLabels[name]; ok {
		if err := c.SetValueLabels(labels); err != nil {
			return nil, err
		}
	}
	if raw, ok := ct.MissingRanges[name]; ok && len(raw) > 0 {
		ranges := make([]MissingRange, len(raw))
		for i, r := range raw {
			ranges[i] = MissingRange{Low: r.Lo, High: r.Hi}
		}
		if err := c.SetMissingRanges(ranges); err != nil {
			return nil, err
		}
	}
	if values, ok := ct.MissingUserValues[name]; ok {
		if err := c.SetMissingValues(values); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ToMap produces a plain mapping with the nine metadata fields,
// suitable for round-tripping through ColumnMetadataFromMap.  Absent
// string fields and empty collections are represented as nil.
func (c *ColumnMetadata) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"name":                   nil,
		"label":                  nil,
		"alignment":              c.alignment.String(),
		"measure":                c.measure.String(),
		"display_width":          c.displayWidth,
		"storage_width":          c.storageWidth,
		"value_metadata":         nil,
		"missing_range_metadata": nil,
		"missing_value_metadata": nil,
	}
	if c.name != "" {
		m["name"] = c.name
	}
	if c.label != "" {
		m["label"] = c.label
	}
	if c.valueLabels != nil {
		labels := make(map[interface{}]string, len(c.valueLabels))
		for k, v := range c.valueLabels {
			labels[k] = v
		}
		m["value_metadata"] = labels
	}
	if c.missingRanges != nil {
		m["missing_range_metadata"] = append([]MissingRange(nil), c.missingRanges...)
	}
	if c.missingValues != nil {
		m["missing_value_metadata"] = append([]interface{}(nil), c.missingValues...)
	}
	return m
}

// ApplyToContainer merges this variable's metadata into ct, mutating
// it in place, and returns ct.  Value labels are registered under both
// the variable name and its label.  The variable is appended to the
// column name/label lists if new, otherwise its existing slot is
// overwritten by name.  This is not a pure function: callers must use
// the returned container as the canonical result and must not rely on
// the argument being left untouched.
func (c *ColumnMetadata) ApplyToContainer(ct *Container) *Container {
	ct.ensureMaps()

	ct.ColumnNamesToLabels[c.name] = c.label
	ct.VariableAlignment[c.name] = c.alignment.String()
	ct.VariableMeasure[c.name] = c.measure.String()
	ct.VariableDisplayWidth[c.name] = c.displayWidth
	ct.VariableStorageWidth[c.name] = c.storageWidth
	if c.valueLabels != nil {
		labels := make(map[interface{}]string, len(c.valueLabels))
		for k, v := range c.valueLabels {
			labels[k] = v
		}
		ct.VariableValueLabels[c.name] = labels
		ct.ValueLabels[c.label] = labels
	}
	ct.VariableToLabel[c.name] = c.label

	if len(c.missingRanges) > 0 {
		raw := make([]RawMissingRange, len(c.missingRanges))
		for i, r := range c.missingRanges {
			raw[i] = RawMissingRange{Lo: r.Low, Hi: r.High}
		}
		ct.MissingRanges[c.name] = raw
	}
	if len(c.missingValues) > 0 {
		ct.MissingUserValues[c.name] = append([]interface{}(nil), c.missingValues...)
	}

	slot := -1
	for i, n := range ct.ColumnNames {
		if n == c.name {
			slot = i
			break
		}
	}
	if slot < 0 {
		ct.ColumnNames = append(ct.ColumnNames, c.name)
		ct.ColumnLabels = append(ct.ColumnLabels, c.label)
	} else {
		ct.ColumnNames[slot] = c.name
		ct.ColumnLabels[slot] = c.label
	}
	return ct
}

// Equal reports whether two ColumnMetadata instances hold the same
// field values.
func (c *ColumnMetadata) Equal(other *ColumnMetadata) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.name == other.name &&
		c.label == other.label &&
		c.alignment == other.alignment &&
		c.measure == other.measure &&
		c.displayWidth == other.displayWidth &&
		c.storageWidth == other.storageWidth &&
		reflect.DeepEqual(c.valueLabels, other.valueLabels) &&
		reflect.DeepEqual(c.missingRanges, other.missingRanges) &&
		reflect.DeepEqual(c.missingValues, other.missingValues)
}

// Metadata describes one sav dataset: dataset-level attributes plus a
// ColumnMetadata per variable.  Column entries are owned exclusively
// by their Metadata and keep their first-seen insertion order, which
// determines column order when the metadata is folded back into a
// native container.
type Metadata struct {
	columns      map[string]*ColumnMetadata
	columnOrder  []string
	fileEncoding string
	notes        string
	tableName    string
	fileLabel    string
	rows         int
}

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{columns: make(map[string]*ColumnMetadata)}
}

// Column returns the metadata for the named variable.
func (md *Metadata) Column(name string) (*ColumnMetadata, bool) {
	c, ok := md.columns[name]
	return c, ok
}

// ColumnNames returns the variable names in insertion order.
func (md *Metadata) ColumnNames() []string {
	return append([]string(nil), md.columnOrder...)
}

// ColumnMetadata returns the name-keyed column metadata mapping, or
// nil when the Metadata holds no columns.  The returned map shares the
// Metadata's entries; use SetColumn to modify them.
func (md *Metadata) ColumnMetadata() map[string]*ColumnMetadata {
	if len(md.columns) == 0 {
		return nil
	}
	return md.columns
}

// SetColumn validates name and inserts or replaces the metadata for
// one variable, preserving first-seen insertion order.
func (md *Metadata) SetColumn(name string, c *ColumnMetadata) error {
	if err := validateVariableName(name, false); err != nil {
		return err
	}
	if md.columns == nil {
		md.columns = make(map[string]*ColumnMetadata)
	}
	if _, exists := md.columns[name]; !exists {
		md.columnOrder = append(md.columnOrder, name)
	}
	md.columns[name] = c
	return nil
}

// DropColumn removes the metadata for the named variable, if present.
func (md *Metadata) DropColumn(name string) {
	if _, ok := md.columns[name]; !ok {
		return
	}
	delete(md.columns, name)
	for i, n := range md.columnOrder {
		if n == name {
			md.columnOrder = append(md.columnOrder[:i], md.columnOrder[i+1:]...)
			break
		}
	}
}

// FileEncoding returns the dataset's file encoding, or the empty
// string when absent.
func (md *Metadata) FileEncoding() string { return md.fileEncoding }

// SetFileEncoding assigns the file encoding.
func (md *Metadata) SetFileEncoding(enc string) { md.fileEncoding = enc }

// Notes returns the dataset notes.
func (md *Metadata) Notes() string { return md.notes }

// SetNotes assigns the dataset notes.  A sequence of strings is joined
// with newlines before storage.
func (md *Metadata) SetNotes(v interface{}) error {
	switch x := v.(type) {
	case nil:
		md.notes = ""
		return nil
	case string:
		md.notes = x
		return nil
	default:
		lines, err := asStringList(v)
		if err != nil {
			return fmt.Errorf("notes: %w", err)
		}
		md.notes = strings.Join(lines, "\n")
		return nil
	}
}

// TableName returns the name of the data table, or the empty string
// when absent.
func (md *Metadata) TableName() string { return md.tableName }

// SetTableName validates and assigns the table name.
func (md *Metadata) SetTableName(name string) error {
	if err := validateVariableName(name, true); err != nil {
		return err
	}
	md.tableName = name
	return nil
}

// FileLabel returns the file label, or the empty string when absent.
func (md *Metadata) FileLabel() string { return md.fileLabel }

// SetFileLabel assigns the file label.
func (md *Metadata) SetFileLabel(label string) { md.fileLabel = label }

// Rows returns the dataset's record count.
func (md *Metadata) Rows() int { return md.rows }

// SetRows assigns the record count, which must not be negative.
func (md *Metadata) SetRows(rows int) error {
	if err := validateNonNegative("rows", rows); err != nil {
		return err
	}
	md.rows = rows
	return nil
}

// Columns returns the number of variables described by the Metadata.
func (md *Metadata) Columns() int { return len(md.columns) }

// MetadataFromMap builds a Metadata from a plain mapping, with the
// same lenient partial-update semantics as ColumnMetadataFromMap.
// Column entries may be ColumnMetadata instances or compatible
// mappings; map input carries no order, so entries are inserted in
// sorted key order.
func MetadataFromMap(m map[string]interface{}) (*Metadata, error) {
	md := NewMetadata()
	if v, ok := m["notes"]; ok {
		if err := md.SetNotes(v); err != nil {
			return nil, err
		}
	}
	if v, ok := m["table_name"]; ok {
		s, err := asString(v)
		if err != nil {
			return nil, fmt.Errorf("table_name: %w", err)
		}
		if err := md.SetTableName(s); err != nil {
			return nil, err
		}
	}
	if v, ok := m["file_label"]; ok {
		s, err := asString(v)
		if err != nil {
			return nil, fmt.Errorf("file_label: %w", err)
		}
		md.SetFileLabel(s)
	}
	if v, ok := m["rows"]; ok {
		n, err := asInt(v)
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		if err := md.SetRows(n); err != nil {
			return nil, err
		}
	}
	if v, ok := m["file_encoding"]; ok {
		s, err := asString(v)
		if err != nil {
			return nil, fmt.Errorf("file_encoding: %w", err)
		}
		md.SetFileEncoding(s)
	}
	if v, ok := m["column_metadata"]; ok && v != nil {
		entries, err := parseColumnEntries(v)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := md.SetColumn(name, entries[name]); err != nil {
				return nil, err
			}
		}
	}
	return md, nil
}

func parseColumnEntries(v interface{}) (map[string]*ColumnMetadata, error) {
	out := make(map[string]*ColumnMetadata)
	switch x := v.(type) {
	case map[string]*ColumnMetadata:
		for name, c := range x {
			out[name] = c
		}
	case map[string]interface{}:
		for name, entry := range x {
			switch e := entry.(type) {
			case *ColumnMetadata:
				out[name] = e
			case map[string]interface{}:
				c, err := ColumnMetadataFromMap(e)
				if err != nil {
					return nil, fmt.Errorf("column_metadata[%s]: %w", name, err)
				}
				out[name] = c
			default:
				return nil, fmt.Errorf("%w: column_metadata[%s] must be a ColumnMetadata or mapping, was %T", ErrInvalidValue, name, entry)
			}
		}
	default:
		return nil, fmt.Errorf("%w: column_metadata must be a mapping, was %T", ErrInvalidValue, v)
	}
	return out, nil
}

// MetadataFromContainer builds a Metadata from a native metadata
// container, one ColumnMetadata per column name in the container's
// column order.
func MetadataFromContainer(ct *Container) (*Metadata, error) {
	md := NewMetadata()
	if err := md.SetNotes(ct.Notes); err != nil {
		return nil, err
	}
	if err := md.SetTableName(ct.TableName); err != nil {
		return nil, err
	}
	md.SetFileLabel(ct.FileLabel)
	if err := md.SetRows(ct.NumberRows); err != nil {
		return nil, err
	}
	md.SetFileEncoding(ct.FileEncoding)

	for _, name := range ct.ColumnNames {
		c, err := ColumnMetadataFromContainer(name, ct)
		if err != nil {
			return nil, err
		}
		if err := md.SetColumn(name, c); err != nil {
			return nil, err
		}
	}
	return md, nil
}

// ToMap produces a plain mapping of the dataset fields plus the
// computed column count and the column metadata sub-mapping.  Column
// entries remain ColumnMetadata values; callers needing a fully plain
// structure must recurse with ColumnMetadata.ToMap.
func (md *Metadata) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"table_name":      nil,
		"file_label":      nil,
		"file_encoding":   nil,
		"columns":         md.Columns(),
		"rows":            md.rows,
		"column_metadata": nil,
		"notes":           nil,
	}
	if md.tableName != "" {
		m["table_name"] = md.tableName
	}
	if md.fileLabel != "" {
		m["file_label"] = md.fileLabel
	}
	if md.fileEncoding != "" {
		m["file_encoding"] = md.fileEncoding
	}
	if md.notes != "" {
		m["notes"] = md.notes
	}
	if len(md.columns) > 0 {
		cols := make(map[string]*ColumnMetadata, len(md.columns))
		for name, c := range md.columns {
			cols[name] = c
		}
		m["column_metadata"] = cols
	}
	return m
}

// ToContainer constructs a native metadata container from the
// Metadata, folding every column's metadata in insertion order.  The
// native representation supports a single note string, so a multi-line
// notes value is narrowed to its first line.  This truncation is
// intentional and one-directional.
func (md *Metadata) ToContainer() *Container {
	ct := NewContainer()
	ct.TableName = md.tableName
	ct.FileLabel = md.fileLabel
	ct.FileEncoding = md.fileEncoding

	notes := md.notes
	if i := strings.IndexByte(notes, '\n'); i >= 0 {
		notes = notes[:i]
	}
	ct.Notes = notes
	ct.NumberRows = md.rows

	for _, name := range md.columnOrder {
		ct = md.columns[name].ApplyToContainer(ct)
	}
	return ct
}

// Equal reports whether two Metadata instances hold the same field
// values and equal column metadata.  Column order is not compared.
func (md *Metadata) Equal(other *Metadata) bool {
	if md == nil || other == nil {
		return md == other
	}
	if md.fileEncoding != other.fileEncoding ||
		md.notes != other.notes ||
		md.tableName != other.tableName ||
		md.fileLabel != other.fileLabel ||
		md.rows != other.rows ||
		len(md.columns) != len(other.columns) {
		return false
	}
	for name, c := range md.columns {
		oc, ok := other.columns[name]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}
