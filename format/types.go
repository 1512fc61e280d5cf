// Package format declares the on-disk enumerations and constants shared by the QVD
// header, symbol, and record codecs: field types, field tags, symbol tags, and the
// bit-extraction mask table.
package format

// FieldType is the QvdFieldHeader/NumberFormat "Type" enumeration.
type FieldType string

const (
	TypeUnknown   FieldType = "UNKNOWN"
	TypeASCII     FieldType = "ASCII"
	TypeDate      FieldType = "DATE"
	TypeTimestamp FieldType = "TIMESTAMP"
	TypeInteger   FieldType = "INTEGER"
	TypeReal      FieldType = "REAL"
	TypeInterval  FieldType = "INTERVAL"
	TypeFix       FieldType = "FIX"
)

func (t FieldType) String() string {
	if t == "" {
		return string(TypeUnknown)
	}

	return string(t)
}

// FieldTag is one of the QVD field tag string constants ($numeric, $integer, ...).
type FieldTag string

const (
	TagNumeric   FieldTag = "$numeric"
	TagInteger   FieldTag = "$integer"
	TagASCII     FieldTag = "$ascii"
	TagText      FieldTag = "$text"
	TagTimestamp FieldTag = "$timestamp"
	TagDate      FieldTag = "$date"
	TagHidden    FieldTag = "$hidden"
	TagKey       FieldTag = "$key"
)

func (t FieldTag) String() string {
	return string(t)
}

// SymbolTag is the one-byte prefix identifying a symbol record's on-disk encoding
// (spec.md §4.2).
type SymbolTag byte

const (
	// SymbolInt32 is a signed 4-byte little-endian integer symbol.
	SymbolInt32 SymbolTag = 0x01
	// SymbolFloat64 is an 8-byte little-endian IEEE-754 float symbol.
	SymbolFloat64 SymbolTag = 0x02
	// SymbolNull is the reserved/absent symbol tag: no payload, treated as skipped.
	SymbolNull SymbolTag = 0x03
	// SymbolText is a NUL-terminated UTF-8 string symbol.
	SymbolText SymbolTag = 0x04
	// SymbolDualInt is a dual (int32, text) symbol.
	SymbolDualInt SymbolTag = 0x05
	// SymbolDualFloat is a dual (float64, text) symbol.
	SymbolDualFloat SymbolTag = 0x06
)

func (s SymbolTag) String() string {
	switch s {
	case SymbolInt32:
		return "Int32"
	case SymbolFloat64:
		return "Float64"
	case SymbolNull:
		return "Null"
	case SymbolText:
		return "Text"
	case SymbolDualInt:
		return "DualInt"
	case SymbolDualFloat:
		return "DualFloat"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the six defined symbol tags.
func (s SymbolTag) Valid() bool {
	switch s {
	case SymbolInt32, SymbolFloat64, SymbolNull, SymbolText, SymbolDualInt, SymbolDualFloat:
		return true
	default:
		return false
	}
}

// MaxBitWidth is the largest bit width a single field may occupy in a packed row
// (spec.md §4.6).
const MaxBitWidth = 64

// BitMask is a precomputed lookup table where BitMask[n] == (1<<n)-1 for n in [0,64].
// BitMask[64] is the full 64-bit mask (u64 max), since 1<<64 overflows uint64.
//
// Used by the record codec to extract an n-bit field from a packed row integer.
var BitMask [MaxBitWidth + 1]uint64

func init() {
	for n := 0; n < MaxBitWidth; n++ {
		BitMask[n] = (uint64(1) << uint(n)) - 1
	}
	BitMask[MaxBitWidth] = ^uint64(0)
}
