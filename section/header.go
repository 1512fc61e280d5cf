// Package section implements the QVD header (spec.md §4.1), symbol table (§4.2), and
// record (§4.3) codecs — one codec per on-disk section of a QVD file.
package section

import (
	"github.com/kongson-cheung/qvdgo/format"
	"github.com/kongson-cheung/qvdgo/value"
)

// NumberFormat describes a field's display formatting metadata (spec.md §3). None of
// its fields drive decode/encode semantics; they are carried through read/write
// verbatim, matching the reference implementation which never populates them from
// column data.
type NumberFormat struct {
	Type    format.FieldType
	NDec    int
	UseThou int
	Fmt     string
	Dec     string
	Thou    string
}

// FieldHeader is a single column's metadata (spec.md §3).
type FieldHeader struct {
	FieldName    string
	BitOffset    int
	BitWidth     int
	Bias         int
	NumberFormat NumberFormat
	NoOfSymbols  int
	Offset       int
	Length       int
	Comment      string
	Tags         []format.FieldTag

	// Symbols is populated by ReadFile from the symbol codec's output and used to resolve
	// the record codec's indices into values; it is transient table metadata, not part
	// of the on-disk header (spec.md
	// §9 "avoid carrying _SymbolBytes as a mutable sidecar").
	Symbols []value.Value
}

// IsAllNull reports whether the field represents an all-null column (Bias == -2 and
// NoOfSymbols == 0).
func (f FieldHeader) IsAllNull() bool {
	return f.Bias == -2 && f.NoOfSymbols == 0
}

// HasTag reports whether the field carries the given tag.
func (f FieldHeader) HasTag(tag format.FieldTag) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

// LineageInfo is the (optional) provenance record of a QVD file.
type LineageInfo struct {
	Discriminator string
	Statement     string
}

// TableHeader is the parsed/emitted `QvdTableHeader` XML document (spec.md §3).
type TableHeader struct {
	QvBuildNo           int
	CreatorDoc          string
	CreateUtcTime       string
	SourceCreateUtcTime string
	SourceFileUtcTime   string
	StaleUtcTime        string
	TableName           string
	SourceFileSize      int
	Fields              []FieldHeader
	Compression         string
	RecordByteSize      int
	NoOfRecords         int
	Offset              int
	Length              int
	Comment             string
	Lineage             LineageInfo
}

// FieldByName returns the field header named name, or false if absent.
func (h *TableHeader) FieldByName(name string) (*FieldHeader, bool) {
	for i := range h.Fields {
		if h.Fields[i].FieldName == name {
			return &h.Fields[i], true
		}
	}

	return nil, false
}
