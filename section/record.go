package section

import (
	"fmt"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/format"
)

// DecodeRecords unpacks the record section into per-row, per-field symbol indices.
// data must be exactly recordByteSize*noOfRecords bytes long (spec.md §4.3). The returned slice has one entry per field, each
// holding noOfRecords indices (or -1 where the field's Bias is -2, i.e. an explicit
// null regardless of bits).
func DecodeRecords(data []byte, fields []FieldHeader, recordByteSize, noOfRecords int) ([][]int, error) {
	if len(data) != recordByteSize*noOfRecords {
		return nil, fmt.Errorf("%w: got %d bytes, want %d*%d=%d",
			errs.ErrRecordSectionSize, len(data), recordByteSize, noOfRecords, recordByteSize*noOfRecords)
	}

	for _, f := range fields {
		if f.BitWidth > format.MaxBitWidth {
			return nil, fmt.Errorf("%w: field %q bit width %d", errs.ErrBitWidthOverflow, f.FieldName, f.BitWidth)
		}
		if f.Bias != -2 && f.BitOffset+f.BitWidth > format.MaxBitWidth {
			return nil, fmt.Errorf("%w: field %q ends at bit %d", errs.ErrBitWidthOverflow, f.FieldName, f.BitOffset+f.BitWidth)
		}
	}

	indices := make([][]int, len(fields))
	for i := range fields {
		indices[i] = make([]int, noOfRecords)
	}

	for r := 0; r < noOfRecords; r++ {
		row := littleEndianUint(data[r*recordByteSize : (r+1)*recordByteSize])

		for fi, f := range fields {
			if f.Bias == -2 {
				indices[fi][r] = -1
				continue
			}

			idx := int((row >> uint(f.BitOffset)) & format.BitMask[f.BitWidth])
			if idx >= f.NoOfSymbols {
				return nil, fmt.Errorf("%w: field %q row %d index %d >= NoOfSymbols %d",
					errs.ErrCorruptRecordIndex, f.FieldName, r, idx, f.NoOfSymbols)
			}
			indices[fi][r] = idx
		}
	}

	return indices, nil
}

// littleEndianUint interprets the low 8 bytes of b as a little-endian unsigned integer;
// bytes past the eighth are ignored. DecodeRecords rejects any field that ends past bit
// 64 with ErrBitWidthOverflow, so those bytes never carry a field's bits.
func littleEndianUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}

	return v
}

// EncodeRecords packs per-field, per-row symbol indices into the record section
// bytes. indices[i] must hold noOfRecords entries for fields[i]. Entries of a field with
// Bias -2 or NoOfSymbols<=1 are ignored and contribute nothing; every other entry must
// lie in [0, NoOfSymbols), otherwise ErrCorruptRecordIndex is returned (spec.md §4.3).
func EncodeRecords(indices [][]int, fields []FieldHeader, recordByteSize, noOfRecords int) ([]byte, error) {
	if len(indices) != len(fields) {
		return nil, fmt.Errorf("qvd: %d index columns for %d fields", len(indices), len(fields))
	}

	out := make([]byte, recordByteSize*noOfRecords)

	for r := 0; r < noOfRecords; r++ {
		var row uint64
		for fi, f := range fields {
			if f.NoOfSymbols <= 1 || f.Bias == -2 {
				continue
			}

			idx := indices[fi][r]
			if idx < 0 || idx >= f.NoOfSymbols {
				return nil, fmt.Errorf("%w: field %q row %d index %d out of range [0,%d)",
					errs.ErrCorruptRecordIndex, f.FieldName, r, idx, f.NoOfSymbols)
			}

			row |= uint64(idx) << uint(f.BitOffset)
		}

		putLittleEndianUint(out[r*recordByteSize:(r+1)*recordByteSize], row)
	}

	return out, nil
}

func putLittleEndianUint(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

// LayoutFields assigns BitOffset, BitWidth, and Bias to each field from its
// NoOfSymbols, applies the byte-alignment padding policy, and returns the total
// (post-padding) bit width and the resulting RecordByteSize (spec.md §4.3, §4.5 steps
// 5-6).
func LayoutFields(fields []FieldHeader) (totalBits int, recordByteSize int, err error) {
	bitOffset := 0
	for i := range fields {
		width, werr := BitWidthFor(fields[i].NoOfSymbols)
		if werr != nil {
			return 0, 0, werr
		}

		fields[i].BitWidth = width
		fields[i].Bias = 0
		if fields[i].NoOfSymbols == 0 {
			fields[i].Bias = -2
		}

		if fields[i].NoOfSymbols == 1 {
			fields[i].BitOffset = 0
		} else {
			fields[i].BitOffset = bitOffset
		}

		bitOffset += width
	}

	pad := 0
	switch {
	case bitOffset == 0:
		// No field contributes any bits (all-null or all-single-valued columns); a row
		// still needs a physical byte, so RecordByteSize is at least 1 (spec.md §3
		// invariant "RecordByteSize: int≥1", scenario C).
		pad = 8
	case bitOffset%8 != 0:
		pad = 8 - bitOffset%8
	}

	// The reference grants the pad to the first field (in declared order) with more
	// than one symbol whose post-pad offset+width lands on a byte boundary, then
	// shifts every later field with BitOffset>0 by the same amount (spec.md §4.3
	// "Padding policy").
	padded := false
	for i := range fields {
		if !padded {
			if (fields[i].BitOffset+fields[i].BitWidth+pad)%8 == 0 && fields[i].NoOfSymbols > 1 {
				fields[i].BitWidth += pad
				padded = true
			}
		} else if fields[i].BitOffset > 0 {
			fields[i].BitOffset += pad
		}
	}

	total := bitOffset + pad
	if total > format.MaxBitWidth {
		return 0, 0, fmt.Errorf("%w: row needs %d bits", errs.ErrBitWidthOverflow, total)
	}
	recordByteSize = total / 8

	return total, recordByteSize, nil
}
