package qvd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/format"
	"github.com/kongson-cheung/qvdgo/section"
	"github.com/kongson-cheung/qvdgo/table"
	"github.com/kongson-cheung/qvdgo/value"
)

func readRecordSection(t *testing.T, path string) (*section.TableHeader, []byte) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	sep := bytes.IndexByte(data, 0)
	require.GreaterOrEqual(t, sep, 0)

	header, err := section.ParseHeader(data[:sep])
	require.NoError(t, err)

	base := sep + 1
	recStart := base + header.Offset
	recEnd := recStart + header.Length

	return header, data[recStart:recEnd]
}

// TestWriteFile_ScenarioA: single integer column {X: [7, 7, 9, null]}.
func TestWriteFile_ScenarioA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.qvd")

	in, err := table.New(table.Column{
		Name: "X", Type: table.ElementInt32,
		Values: []value.Value{value.Int32(7), value.Int32(7), value.Int32(9), value.Null()},
	})
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in))

	header, recordBytes := readRecordSection(t, path)
	require.Len(t, header.Fields, 1)

	x := header.Fields[0]
	require.Equal(t, "X", x.FieldName)
	require.Equal(t, 2, x.NoOfSymbols)
	require.Equal(t, 1, header.RecordByteSize)
	require.Equal(t, []byte{0x00, 0x00, 0x01, 0x00}, recordBytes)
}

// TestWriteFile_ScenarioB: two columns, string + float, exercising the padding policy.
func TestWriteFile_ScenarioB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.qvd")

	in, err := table.New(
		table.Column{Name: "Name", Type: table.ElementString, Values: []value.Value{value.Text("a"), value.Text("b"), value.Text("a")}},
		table.Column{Name: "V", Type: table.ElementFloat64, Values: []value.Value{value.Float64(1.0), value.Float64(2.0), value.Float64(1.0)}},
	)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in))

	header, recordBytes := readRecordSection(t, path)
	require.Equal(t, 1, header.RecordByteSize)
	require.Equal(t, []byte{0x00, 0x03, 0x00}, recordBytes)
}

// TestWriteFile_ScenarioC: an all-null column.
func TestWriteFile_ScenarioC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.qvd")

	in, err := table.New(table.Column{
		Name: "N", Type: table.ElementNull,
		Values: []value.Value{value.Null(), value.Null()},
	})
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in))

	header, recordBytes := readRecordSection(t, path)
	require.Equal(t, 0, header.Fields[0].NoOfSymbols)
	require.Equal(t, -2, header.Fields[0].Bias)
	require.Equal(t, 1, header.RecordByteSize)
	require.Equal(t, []byte{0x00, 0x00}, recordBytes)

	out, err := ReadFile(path)
	require.NoError(t, err)
	col, ok := out.Column("N")
	require.True(t, ok)
	for _, v := range col.Values {
		require.True(t, v.IsNull())
	}
}

// TestReadWriteFile_ScenarioD_RoundTrip: writing then reading the two-column table
// yields the same schema and values row-for-row.
func TestReadWriteFile_ScenarioD_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.qvd")

	in, err := table.New(
		table.Column{Name: "Name", Type: table.ElementString, Values: []value.Value{value.Text("a"), value.Text("b"), value.Text("a")}},
		table.Column{Name: "V", Type: table.ElementFloat64, Values: []value.Value{value.Float64(1.0), value.Float64(2.0), value.Float64(1.0)}},
	)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, out.Columns, 2)

	nameCol, ok := out.Column("Name")
	require.True(t, ok)
	require.Equal(t, table.ElementString, nameCol.Type)

	for i, want := range []string{"a", "b", "a"} {
		got, ok := nameCol.Values[i].AsText()
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	vCol, ok := out.Column("V")
	require.True(t, ok)
	require.Equal(t, table.ElementFloat64, vCol.Type)

	for i, want := range []float64{1.0, 2.0, 1.0} {
		got, ok := vCol.Values[i].AsFloat64()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

// TestReadFile_ScenarioE_CorruptedIndex: a hand-crafted file where a row encodes an
// out-of-range symbol index fails with ErrCorruptRecordIndex; a valid index decodes.
func TestReadFile_ScenarioE_CorruptedIndex(t *testing.T) {
	buildFile := func(t *testing.T, rowByte byte) string {
		t.Helper()

		fields := []section.FieldHeader{{FieldName: "X", NoOfSymbols: 2}}
		_, recordByteSize, err := section.LayoutFields(fields)
		require.NoError(t, err)

		symbolBytes, err := section.EncodeSymbols([]value.Value{value.Int32(1), value.Int32(2)}, format.SymbolInt32)
		require.NoError(t, err)
		fields[0].Length = len(symbolBytes)

		header := &section.TableHeader{
			TableName:      "T",
			SourceFileSize: -1,
			Fields:         fields,
			RecordByteSize: recordByteSize,
			NoOfRecords:    1,
			Offset:         len(symbolBytes),
			Length:         recordByteSize,
		}

		xmlBytes, err := section.EmitHeader(header)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "e.qvd")
		var buf bytes.Buffer
		buf.Write(xmlBytes)
		buf.WriteString("\r\n\x00")
		buf.Write(symbolBytes)
		buf.WriteByte(rowByte)
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		return path
	}

	t.Run("valid index decodes", func(t *testing.T) {
		path := buildFile(t, 0x01)
		out, err := ReadFile(path)
		require.NoError(t, err)
		col, _ := out.Column("X")
		n, ok := col.Values[0].AsInt32()
		require.True(t, ok)
		require.Equal(t, int32(2), n)
	})

	t.Run("out-of-range index fails", func(t *testing.T) {
		path := buildFile(t, 0x02)
		_, err := ReadFile(path)
		require.ErrorIs(t, err, errs.ErrCorruptRecordIndex)
	})
}

// TestReadFile_ScenarioF_MissingLineageTolerated: a header with no Lineage element at
// all still reads successfully; re-writing the table produces an (empty) Lineage.
func TestReadFile_ScenarioF_MissingLineageTolerated(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<QvdTableHeader>
<QvBuildNo>1</QvBuildNo>
<CreatorDoc>doc</CreatorDoc>
<CreateUtcTime></CreateUtcTime>
<SourceCreateUtcTime></SourceCreateUtcTime>
<SourceFileUtcTime></SourceFileUtcTime>
<SourceFileSize>-1</SourceFileSize>
<StaleUtcTime></StaleUtcTime>
<TableName>T</TableName>
<Fields></Fields>
<Compression></Compression>
<RecordByteSize>0</RecordByteSize>
<NoOfRecords>0</NoOfRecords>
<Offset>0</Offset>
<Length>0</Length>
<Comment></Comment>
</QvdTableHeader>`

	path := filepath.Join(t.TempDir(), "f.qvd")
	var buf bytes.Buffer
	buf.WriteString(doc)
	buf.WriteString("\r\n\x00")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, out.Columns)

	rewritePath := filepath.Join(t.TempDir(), "f2.qvd")
	require.NoError(t, WriteFile(rewritePath, out))

	header, _ := readRecordSection(t, rewritePath)
	require.Equal(t, "", header.Lineage.Discriminator)
	require.Equal(t, "", header.Lineage.Statement)
}

// TestWriteFile_SchemaMismatch: an unsupported column element type fails before any
// file bytes are produced.
func TestWriteFile_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.qvd")

	in, err := table.New(table.Column{Name: "Bad", Type: table.ElementUnknown, Values: []value.Value{value.Int32(1)}})
	require.NoError(t, err)

	err = WriteFile(path, in)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "no file should be produced on schema mismatch")
}

func TestReadFile_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.qvd")

	in, err := table.New(table.Column{Name: "X", Type: table.ElementInt32, Values: nil})
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	col, ok := out.Column("X")
	require.True(t, ok)
	require.Empty(t, col.Values)
}

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Info(msg string) {
	r.messages = append(r.messages, msg)
}

func TestWriteFile_LogsLifecycleMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logged.qvd")
	logger := &recordingLogger{}

	in, err := table.New(table.Column{Name: "X", Type: table.ElementInt32, Values: []value.Value{value.Int32(1)}})
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in, WithLogger(logger)))

	require.Contains(t, logger.messages[0], "starts writing to")
	require.Contains(t, logger.messages[len(logger.messages)-1], "finished writing to")
}
