package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/format"
)

func sampleHeader() *TableHeader {
	return &TableHeader{
		QvBuildNo:           50668,
		CreatorDoc:          "out.qvd",
		CreateUtcTime:       "2024-01-01 00:00:00",
		SourceCreateUtcTime: "",
		SourceFileUtcTime:   "",
		SourceFileSize:      -1,
		StaleUtcTime:        "",
		TableName:           "T",
		Fields: []FieldHeader{
			{
				FieldName:    "X",
				BitOffset:    0,
				BitWidth:     8,
				Bias:         0,
				NumberFormat: NumberFormat{Type: format.TypeInteger},
				NoOfSymbols:  2,
				Offset:       0,
				Length:       10,
				Comment:      "",
				Tags:         []format.FieldTag{format.TagInteger, format.TagNumeric},
			},
		},
		Compression:    "",
		RecordByteSize: 1,
		NoOfRecords:    4,
		Offset:         10,
		Length:         4,
		Comment:        "",
	}
}

func TestEmitHeader_ParseHeader_RoundTrip(t *testing.T) {
	h := sampleHeader()

	data, err := EmitHeader(h)
	require.NoError(t, err)
	require.Contains(t, string(data), "<?xml")
	require.Contains(t, string(data), "<QvdTableHeader>")

	parsed, err := ParseHeader(data)
	require.NoError(t, err)

	require.Equal(t, h.QvBuildNo, parsed.QvBuildNo)
	require.Equal(t, h.TableName, parsed.TableName)
	require.Equal(t, h.RecordByteSize, parsed.RecordByteSize)
	require.Len(t, parsed.Fields, 1)
	require.Equal(t, "X", parsed.Fields[0].FieldName)
	require.Equal(t, format.TypeInteger, parsed.Fields[0].NumberFormat.Type)
	require.Equal(t, []format.FieldTag{format.TagInteger, format.TagNumeric}, parsed.Fields[0].Tags)
	require.Equal(t, "", parsed.Lineage.Discriminator)
	require.Equal(t, "", parsed.Lineage.Statement)
}

func TestParseHeader_MissingLineageTolerated(t *testing.T) {
	// Scenario F: a header with no Lineage element at all parses successfully with
	// empty lineage fields.
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

	h, err := ParseHeader([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, "", h.Lineage.Discriminator)
	require.Equal(t, "", h.Lineage.Statement)
	require.Empty(t, h.Fields)
}

func TestParseHeader_MissingRequiredElement(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?><QvdTableHeader></QvdTableHeader>`

	_, err := ParseHeader([]byte(doc))
	require.ErrorIs(t, err, errs.ErrMissingElement)
}

func TestParseHeader_InvalidRoot(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?><NotAHeader></NotAHeader>`

	_, err := ParseHeader([]byte(doc))
	require.ErrorIs(t, err, errs.ErrInvalidXML)
}

func TestParseHeader_InvalidNumericElement(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8"?>
<QvdTableHeader>
<QvBuildNo>not-a-number</QvBuildNo>
</QvdTableHeader>`

	_, err := ParseHeader([]byte(doc))
	require.ErrorIs(t, err, errs.ErrInvalidNumericElement)
}
