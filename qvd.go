// Package qvd composes the header, symbol, and record codecs in package section into
// the two end-to-end pipelines the format exists for: ReadFile decodes a QVD file into
// a table.Table, and WriteFile encodes a table.Table as a QVD file (spec.md §4.4,
// §4.5). It is the root convenience entry point, mirroring the teacher's root
// mebo.go wrappers over package blob.
package qvd

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/format"
	"github.com/kongson-cheung/qvdgo/internal/intern"
	"github.com/kongson-cheung/qvdgo/internal/options"
	"github.com/kongson-cheung/qvdgo/internal/pool"
	"github.com/kongson-cheung/qvdgo/section"
	"github.com/kongson-cheung/qvdgo/table"
	"github.com/kongson-cheung/qvdgo/value"
)

// defaultQvBuildNo is the build number the reference writer stamps into every file it
// produces; callers reading it back never interpret this value, so one fixed constant
// is all a from-scratch writer needs.
const defaultQvBuildNo = 50668

// defaultProgressInterval is how often (in rows) the pipeline reports progress through
// Logger.Info (spec.md §4.4 "Progress reporting").
const defaultProgressInterval = 1_000_000

// Logger is the external log sink the pipeline reports through (spec.md §6). The host
// plugin runtime that normally supplies this is an external collaborator out of scope
// for this codec; callers inject their own.
type Logger interface {
	Info(msg string)
}

// NopLogger discards every message.
type NopLogger struct{}

// Info implements Logger.
func (NopLogger) Info(string) {}

// StdLogger adapts the standard library's log.Logger to Logger, for callers with no
// structured logging dependency of their own.
type StdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a StdLogger writing to os.Stderr with standard flags.
func NewStdLogger() *StdLogger {
	return &StdLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
}

// Info implements Logger.
func (s *StdLogger) Info(msg string) {
	s.l.Print(msg)
}

type config struct {
	logger           Logger
	progressInterval int
}

func newConfig() *config {
	return &config{logger: NopLogger{}, progressInterval: defaultProgressInterval}
}

// Option configures ReadFile or WriteFile.
type Option = options.Option[*config]

// ReadOption configures ReadFile.
type ReadOption = Option

// WriteOption configures WriteFile.
type WriteOption = Option

// WithLogger routes progress and lifecycle messages through l instead of discarding
// them.
func WithLogger(l Logger) Option {
	return options.NoError(func(c *config) { c.logger = l })
}

// WithProgressInterval overrides the row count between progress messages (default
// 1,000,000).
func WithProgressInterval(n int) Option {
	return options.NoError(func(c *config) { c.progressInterval = n })
}

// ReadFile parses the QVD file at path into a table.Table (spec.md §4.4).
func ReadFile(path string, opts ...ReadOption) (*table.Table, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	cfg.logger.Info(fmt.Sprintf("starts reading from %s", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	sep := bytes.IndexByte(data, 0)
	if sep < 0 {
		return nil, fmt.Errorf("%w: no header terminator found", errs.ErrInvalidXML)
	}

	header, err := section.ParseHeader(data[:sep])
	if err != nil {
		return nil, err
	}

	cfg.logger.Info(fmt.Sprintf("Total number of records: %d", header.NoOfRecords))

	base := sep + 1
	fields := header.Fields
	maxTags := make([]format.SymbolTag, len(fields))

	for i := range fields {
		f := &fields[i]

		start, end := base+f.Offset, base+f.Offset+f.Length
		if start < 0 || end < start || end > len(data) {
			return nil, fmt.Errorf("%w: field %q symbol block out of range", errs.ErrIO, f.FieldName)
		}

		symbols, maxTag, err := section.DecodeSymbols(data[start:end], f.NoOfSymbols)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.FieldName, err)
		}
		f.Symbols = symbols
		maxTags[i] = maxTag
	}

	recStart, recEnd := base+header.Offset, base+header.Offset+header.Length
	if recStart < 0 || recEnd < recStart || recEnd > len(data) {
		return nil, fmt.Errorf("%w: record section out of range", errs.ErrIO)
	}

	indices, err := section.DecodeRecords(data[recStart:recEnd], fields, header.RecordByteSize, header.NoOfRecords)
	if err != nil {
		return nil, err
	}

	columns := make([]table.Column, len(fields))
	for i, f := range fields {
		columns[i] = table.Column{
			Name:   f.FieldName,
			Type:   elementTypeFor(maxTags[i], f),
			Values: make([]value.Value, header.NoOfRecords),
		}
	}

	for r := 0; r < header.NoOfRecords; r++ {
		if cfg.progressInterval > 0 && r > 0 && r%cfg.progressInterval == 0 {
			cfg.logger.Info(fmt.Sprintf("Read %d records ...", r))
		}

		for i, f := range fields {
			idx := indices[i][r]
			switch {
			case idx < 0, f.NoOfSymbols == 0:
				columns[i].Values[r] = value.Null()
			default:
				columns[i].Values[r] = f.Symbols[idx]
			}
		}
	}

	cfg.logger.Info(fmt.Sprintf("finished reading from %s", path))

	return table.New(columns...)
}

// elementTypeFor infers a column's external element type from the maximum symbol tag
// observed in its field (spec.md §4.2 "Inferred kind"). A tag-6 field cannot be
// distinguished between a time-of-day and a timestamp source purely from the bytes on
// disk (spec.md §9 "symbol type 66" open question); ReadFile reports it as
// ElementTimestamp.
func elementTypeFor(tag format.SymbolTag, f section.FieldHeader) table.ElementType {
	if f.NoOfSymbols == 0 {
		return table.ElementNull
	}

	switch tag {
	case format.SymbolInt32:
		return table.ElementInt32
	case format.SymbolFloat64:
		return table.ElementFloat64
	case format.SymbolText:
		return table.ElementString
	case format.SymbolDualInt:
		return table.ElementDate
	case format.SymbolDualFloat:
		return table.ElementTimestamp
	default:
		return table.ElementNull
	}
}

// WriteFile encodes t as a QVD file at path (spec.md §4.5).
func WriteFile(path string, t *table.Table, opts ...WriteOption) error {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	cfg.logger.Info(fmt.Sprintf("starts writing to %s", path))

	rowCount, err := t.RowCount()
	if err != nil {
		return err
	}

	cfg.logger.Info(fmt.Sprintf("Total number of records: %d", rowCount))

	header := &section.TableHeader{
		QvBuildNo:      defaultQvBuildNo,
		CreatorDoc:     path,
		CreateUtcTime:  time.Now().UTC().Format("2006-01-02 15:04:05"),
		TableName:      tableNameFor(path),
		SourceFileSize: -1,
	}

	fields := make([]section.FieldHeader, len(t.Columns))
	symbolBufs := make([]*pool.ByteBuffer, len(t.Columns))
	indices := make([][]int, len(t.Columns))
	offset := 0

	defer func() {
		for _, bb := range symbolBufs {
			pool.Put(bb)
		}
	}()

	for i, col := range t.Columns {
		if col.Type == table.ElementNull {
			fields[i] = section.FieldHeader{FieldName: col.Name, Bias: -2}
			idx := make([]int, rowCount)
			for r := range idx {
				idx[r] = -1
			}
			indices[i] = idx

			continue
		}

		kind, fieldType, tags, err := symbolPlanFor(col.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}

		in := intern.New()
		idx := make([]int, rowCount)
		for r, v := range col.Values {
			if v.IsNull() {
				idx[r] = 0
				continue
			}
			idx[r] = in.Intern(v)
		}

		symbols := in.Symbols()
		blockBytes, err := section.EncodeSymbols(symbols, kind)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}

		bb := pool.Get()
		bb.Write(blockBytes)
		symbolBufs[i] = bb

		fields[i] = section.FieldHeader{
			FieldName:    col.Name,
			NumberFormat: section.NumberFormat{Type: fieldType},
			Tags:         tags,
			NoOfSymbols:  len(symbols),
			Offset:       offset,
			Length:       bb.Len(),
		}

		offset += bb.Len()
		indices[i] = idx
	}

	_, recordByteSize, err := section.LayoutFields(fields)
	if err != nil {
		return err
	}

	header.Offset = offset
	header.RecordByteSize = recordByteSize
	header.NoOfRecords = rowCount
	header.Length = recordByteSize * rowCount
	header.Fields = fields

	recordBytes, err := section.EncodeRecords(indices, fields, recordByteSize, rowCount)
	if err != nil {
		return err
	}

	recordBuf := pool.Get()
	defer pool.Put(recordBuf)
	recordBuf.Write(recordBytes)

	xmlBytes, err := section.EmitHeader(header)
	if err != nil {
		return err
	}

	// Two-phase write, matching the reference: the XML header replaces the file first,
	// then the binary payload is appended. A crash between phases leaves a header-only
	// file; atomic replacement is the caller's responsibility (spec.md §5).
	if err := os.WriteFile(path, xmlBytes, 0o644); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("\r\n\x00")); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	for _, bb := range symbolBufs {
		if bb == nil {
			continue
		}
		if _, err := f.Write(bb.Bytes()); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
	}
	if _, err := f.Write(recordBuf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	cfg.logger.Info(fmt.Sprintf("finished writing to %s", path))

	return nil
}

// symbolPlanFor maps a column's declared element type to the on-disk symbol kind,
// field type, and tag set the writer emits for it (spec.md §4.5 step 2's
// element-type-family table).
func symbolPlanFor(t table.ElementType) (format.SymbolTag, format.FieldType, []format.FieldTag, error) {
	switch t {
	case table.ElementBool, table.ElementUint8, table.ElementInt16, table.ElementInt32, table.ElementInt64:
		return format.SymbolInt32, format.TypeInteger, []format.FieldTag{format.TagInteger, format.TagNumeric}, nil
	case table.ElementFloat32, table.ElementFloat64:
		return format.SymbolFloat64, format.TypeReal, []format.FieldTag{format.TagNumeric}, nil
	case table.ElementString:
		return format.SymbolText, format.TypeASCII, []format.FieldTag{format.TagASCII, format.TagText}, nil
	case table.ElementDate:
		return format.SymbolDualInt, format.TypeDate, []format.FieldTag{format.TagInteger, format.TagNumeric, format.TagDate}, nil
	case table.ElementTimeOfDay, table.ElementTimestamp:
		return format.SymbolDualFloat, format.TypeTimestamp, []format.FieldTag{format.TagNumeric, format.TagTimestamp}, nil
	default:
		return 0, "", nil, fmt.Errorf("%w: %s", errs.ErrSchemaMismatch, t)
	}
}

// tableNameFor derives the TableName from path's base name: the extension is dropped
// and the rest is upper-cased.
func tableNameFor(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return strings.ToUpper(base)
}
