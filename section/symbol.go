package section

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"unicode/utf8"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/format"
	"github.com/kongson-cheung/qvdgo/value"
)

// DecodeSymbols decodes a field's symbol block into exactly count values.Value,
// following the six-symbol-kind schema of spec.md §4.2. It also returns the
// numerically maximum symbol tag observed, used by the pipeline to infer the column's
// external element type.
func DecodeSymbols(data []byte, count int) ([]value.Value, format.SymbolTag, error) {
	symbols := make([]value.Value, count)
	var maxTag format.SymbolTag

	pos := 0
	for i := 0; i < count; i++ {
		if pos >= len(data) {
			return nil, 0, fmt.Errorf("%w: expected %d symbols, ran out of data at symbol %d",
				errs.ErrTruncatedSymbolBlock, count, i)
		}

		tag := format.SymbolTag(data[pos])
		if !tag.Valid() {
			return nil, 0, fmt.Errorf("%w: tag 0x%02x at symbol %d", errs.ErrUnknownSymbolTag, tag, i)
		}
		if tag > maxTag {
			maxTag = tag
		}
		pos++

		switch tag {
		case format.SymbolNull:
			symbols[i] = value.Null()

		case format.SymbolInt32:
			if pos+4 > len(data) {
				return nil, 0, fmt.Errorf("%w: int32 symbol %d truncated", errs.ErrTruncatedSymbolBlock, i)
			}
			n := int32(binary.LittleEndian.Uint32(data[pos : pos+4]))
			symbols[i] = value.Int32(n)
			pos += 4

		case format.SymbolFloat64:
			if pos+8 > len(data) {
				return nil, 0, fmt.Errorf("%w: float64 symbol %d truncated", errs.ErrTruncatedSymbolBlock, i)
			}
			f := decodeFloat64(data[pos : pos+8])
			symbols[i] = value.Float64(f)
			pos += 8

		case format.SymbolText:
			text, n, err := readCString(data, pos)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: text symbol %d: %v", errs.ErrTruncatedSymbolBlock, i, err)
			}
			if !utf8.ValidString(text) {
				return nil, 0, fmt.Errorf("%w: symbol %d", errs.ErrInvalidUTF8Symbol, i)
			}
			symbols[i] = value.Text(text)
			pos = n

		case format.SymbolDualInt:
			if pos+4 > len(data) {
				return nil, 0, fmt.Errorf("%w: dual-int symbol %d truncated", errs.ErrTruncatedSymbolBlock, i)
			}
			// Numeric portion is consumed to advance the cursor but discarded; the
			// text is the canonical materialized value (spec.md §4.2).
			pos += 4
			text, n, err := readCString(data, pos)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: dual-int symbol %d: %v", errs.ErrTruncatedSymbolBlock, i, err)
			}
			if !utf8.ValidString(text) {
				return nil, 0, fmt.Errorf("%w: symbol %d", errs.ErrInvalidUTF8Symbol, i)
			}
			symbols[i] = value.Text(text)
			pos = n

		case format.SymbolDualFloat:
			if pos+8 > len(data) {
				return nil, 0, fmt.Errorf("%w: dual-float symbol %d truncated", errs.ErrTruncatedSymbolBlock, i)
			}
			pos += 8
			text, n, err := readCString(data, pos)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: dual-float symbol %d: %v", errs.ErrTruncatedSymbolBlock, i, err)
			}
			if !utf8.ValidString(text) {
				return nil, 0, fmt.Errorf("%w: symbol %d", errs.ErrInvalidUTF8Symbol, i)
			}
			symbols[i] = value.Text(text)
			pos = n
		}
	}

	return symbols, maxTag, nil
}

// readCString reads a NUL-terminated string starting at data[start], returning the
// decoded text and the position just past the terminator.
func readCString(data []byte, start int) (string, int, error) {
	i := start
	for i < len(data) && data[i] != 0 {
		i++
	}
	if i >= len(data) {
		return "", 0, fmt.Errorf("unterminated string starting at byte %d", start)
	}

	return string(data[start:i]), i + 1, nil
}

func decodeFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// EncodeSymbols serializes an ordered list of distinct values as a symbol block, per
// the on-disk schema of spec.md §4.2. The assigned symbol index is the position in
// values, starting at 0.
func EncodeSymbols(values []value.Value, kind format.SymbolTag) ([]byte, error) {
	var out []byte

	for i, v := range values {
		switch kind {
		case format.SymbolInt32:
			n, ok := v.AsInt32()
			if !ok {
				return nil, fmt.Errorf("qvd: symbol %d is not Int32", i)
			}
			out = append(out, byte(format.SymbolInt32))
			out = appendUint32(out, uint32(n))

		case format.SymbolFloat64:
			f, ok := v.AsFloat64()
			if !ok {
				return nil, fmt.Errorf("qvd: symbol %d is not Float64", i)
			}
			out = append(out, byte(format.SymbolFloat64))
			out = appendUint64(out, math.Float64bits(f))

		case format.SymbolText:
			text, ok := v.AsText()
			if !ok {
				return nil, fmt.Errorf("qvd: symbol %d is not Text", i)
			}
			out = append(out, byte(format.SymbolText))
			out = append(out, text...)
			out = append(out, 0)

		case format.SymbolDualInt:
			text, ok := v.AsText()
			if !ok {
				return nil, fmt.Errorf("qvd: symbol %d is not a dual-int value", i)
			}
			out = append(out, byte(format.SymbolDualInt))
			out = appendUint32(out, uint32(v.DualInt32()))
			out = append(out, text...)
			out = append(out, 0)

		case format.SymbolDualFloat:
			text, ok := v.AsText()
			if !ok {
				return nil, fmt.Errorf("qvd: symbol %d is not a dual-float value", i)
			}
			out = append(out, byte(format.SymbolDualFloat))
			out = appendUint64(out, math.Float64bits(v.DualFloat64()))
			out = append(out, text...)
			out = append(out, 0)

		default:
			return nil, fmt.Errorf("%w: symbol kind 0x%02x", errs.ErrUnknownSymbolTag, kind)
		}
	}

	return out, nil
}

func appendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func appendUint64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// BitWidthFor returns the bit width needed to represent noOfSymbols distinct indices
// (spec.md §4.5 step 5: BitWidth = bit_length(NoOfSymbols-1) for NoOfSymbols > 1, else
// 0).
func BitWidthFor(noOfSymbols int) (int, error) {
	if noOfSymbols <= 1 {
		return 0, nil
	}

	width := bits.Len(uint(noOfSymbols - 1))
	if width > format.MaxBitWidth {
		return 0, fmt.Errorf("%w: %d symbols need %d bits", errs.ErrBitWidthOverflow, noOfSymbols, width)
	}

	return width, nil
}
