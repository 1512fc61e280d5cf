// Package errs declares the sentinel errors returned by the qvd codec.
//
// Call sites wrap a sentinel with fmt.Errorf("...: %w", errs.ErrX) to attach positional
// context (field name, row index, byte offset) while keeping the sentinel available to
// errors.Is / errors.As.
package errs

import "errors"

var (
	// ErrIO wraps an underlying file read/write failure.
	ErrIO = errors.New("qvd: io error")

	// ErrInvalidXML means the header document is not well-formed XML.
	ErrInvalidXML = errors.New("qvd: invalid xml header")

	// ErrMissingElement means a required XML element is absent.
	ErrMissingElement = errors.New("qvd: missing required xml element")

	// ErrInvalidNumericElement means a required numeric XML element held non-numeric text.
	ErrInvalidNumericElement = errors.New("qvd: invalid numeric xml element")

	// ErrTruncatedSymbolBlock means the cursor would run past the symbol block while
	// symbols remain to be decoded.
	ErrTruncatedSymbolBlock = errors.New("qvd: truncated symbol block")

	// ErrUnknownSymbolTag means a symbol record's tag byte is outside {1,2,3,4,5,6}.
	ErrUnknownSymbolTag = errors.New("qvd: unknown symbol tag")

	// ErrInvalidUTF8Symbol means a decoded string symbol is not valid UTF-8.
	ErrInvalidUTF8Symbol = errors.New("qvd: invalid utf8 symbol")

	// ErrCorruptRecordIndex means a decoded symbol index is out of range for its field.
	ErrCorruptRecordIndex = errors.New("qvd: corrupt record index")

	// ErrRecordSectionSize means the record section length doesn't match
	// RecordByteSize * NoOfRecords.
	ErrRecordSectionSize = errors.New("qvd: record section size mismatch")

	// ErrSchemaMismatch means a write-path input column's type isn't in the supported
	// family table (§4.5).
	ErrSchemaMismatch = errors.New("qvd: unsupported column type")

	// ErrBitWidthOverflow means a field's bit width would exceed 64.
	ErrBitWidthOverflow = errors.New("qvd: bit width overflow")

	// ErrTooManySymbols means a column has more distinct values than fit in a 64-bit
	// symbol index.
	ErrTooManySymbols = errors.New("qvd: too many distinct symbols")

	// ErrColumnLengthMismatch means a table's columns don't share a common row count.
	ErrColumnLengthMismatch = errors.New("qvd: column length mismatch")
)
