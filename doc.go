package spssconverter

/*

Package spssconverter converts between the SPSS sav/zsav binary format
and common tabular interchange formats (CSV, JSON, YAML, Excel, and an
in-memory column-oriented container), preserving the metadata that the
statistical package needs to re-open the data: variable labels,
value-label dictionaries, missing-value ranges and sentinels, display
and storage widths, alignment, and measurement scale.

The binary codec itself is an external collaborator.  Implementations
of the Codec interface (typically a binding to a native readstat
library) register themselves with RegisterCodec, in the manner of
database/sql drivers.  This package owns everything above the codec:
the validated Metadata and ColumnMetadata model, its mappings to and
from the codec's metadata container, and the format bridge operations.

Package spssconverter also includes a simple column-oriented data
container called a Series, and a CSV reader that infers the datatype of
each column.  The bridge operations accept and return data as arrays of
Series objects.

*/
