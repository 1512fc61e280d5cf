package section

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/kongson-cheung/qvdgo/errs"
	"github.com/kongson-cheung/qvdgo/format"
)

// xmlNode is a generic, order-preserving XML element tree, used to walk the
// QvdTableHeader document the way the Python reference walks it with
// ElementTree.find() — by child tag name, tolerant of sibling ordering.
type xmlNode struct {
	XMLName xml.Name
	Content string    `xml:",chardata"`
	Nodes   []xmlNode `xml:",any"`
}

func findChild(n xmlNode, name string) (xmlNode, bool) {
	for _, c := range n.Nodes {
		if c.XMLName.Local == name {
			return c, true
		}
	}

	return xmlNode{}, false
}

func findChildren(n xmlNode, name string) []xmlNode {
	var out []xmlNode
	for _, c := range n.Nodes {
		if c.XMLName.Local == name {
			out = append(out, c)
		}
	}

	return out
}

func requireText(n xmlNode, name string) (string, error) {
	c, ok := findChild(n, name)
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrMissingElement, name)
	}

	return c.Content, nil
}

func optionalText(n xmlNode, name string) string {
	c, ok := findChild(n, name)
	if !ok {
		return ""
	}

	return c.Content
}

func requireInt(n xmlNode, name string) (int, error) {
	text, err := requireText(n, name)
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", errs.ErrInvalidNumericElement, name, text, err)
	}

	return v, nil
}

// ParseHeader parses a `QvdTableHeader` XML document (spec.md §4.1).
func ParseHeader(data []byte) (*TableHeader, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidXML, err)
	}
	if root.XMLName.Local != "QvdTableHeader" {
		return nil, fmt.Errorf("%w: root element is %q, want QvdTableHeader", errs.ErrInvalidXML, root.XMLName.Local)
	}

	h := &TableHeader{}
	var err error

	if h.QvBuildNo, err = requireInt(root, "QvBuildNo"); err != nil {
		return nil, err
	}
	if h.CreatorDoc, err = requireText(root, "CreatorDoc"); err != nil {
		return nil, err
	}
	if h.CreateUtcTime, err = requireText(root, "CreateUtcTime"); err != nil {
		return nil, err
	}
	if h.SourceCreateUtcTime, err = requireText(root, "SourceCreateUtcTime"); err != nil {
		return nil, err
	}
	if h.SourceFileUtcTime, err = requireText(root, "SourceFileUtcTime"); err != nil {
		return nil, err
	}
	if h.SourceFileSize, err = requireInt(root, "SourceFileSize"); err != nil {
		return nil, err
	}
	if h.StaleUtcTime, err = requireText(root, "StaleUtcTime"); err != nil {
		return nil, err
	}
	if h.TableName, err = requireText(root, "TableName"); err != nil {
		return nil, err
	}

	fieldsNode, ok := findChild(root, "Fields")
	if !ok {
		return nil, fmt.Errorf("%w: Fields", errs.ErrMissingElement)
	}
	for _, fn := range findChildren(fieldsNode, "QvdFieldHeader") {
		fh, err := parseFieldHeader(fn)
		if err != nil {
			return nil, err
		}
		h.Fields = append(h.Fields, fh)
	}

	if h.Compression, err = requireText(root, "Compression"); err != nil {
		return nil, err
	}
	if h.RecordByteSize, err = requireInt(root, "RecordByteSize"); err != nil {
		return nil, err
	}
	if h.NoOfRecords, err = requireInt(root, "NoOfRecords"); err != nil {
		return nil, err
	}
	if h.Offset, err = requireInt(root, "Offset"); err != nil {
		return nil, err
	}
	if h.Length, err = requireInt(root, "Length"); err != nil {
		return nil, err
	}

	if lineageNode, ok := findChild(root, "Lineage"); ok {
		if infoNode, ok := findChild(lineageNode, "LineageInfo"); ok {
			h.Lineage.Discriminator = optionalText(infoNode, "Discriminator")
			h.Lineage.Statement = optionalText(infoNode, "Statement")
		}
	}

	if h.Comment, err = requireText(root, "Comment"); err != nil {
		return nil, err
	}

	return h, nil
}

func parseFieldHeader(n xmlNode) (FieldHeader, error) {
	var fh FieldHeader
	var err error

	if fh.FieldName, err = requireText(n, "FieldName"); err != nil {
		return fh, err
	}
	if fh.BitOffset, err = requireInt(n, "BitOffset"); err != nil {
		return fh, err
	}
	if fh.BitWidth, err = requireInt(n, "BitWidth"); err != nil {
		return fh, err
	}
	if fh.Bias, err = requireInt(n, "Bias"); err != nil {
		return fh, err
	}

	nfNode, ok := findChild(n, "NumberFormat")
	if !ok {
		return fh, fmt.Errorf("%w: NumberFormat", errs.ErrMissingElement)
	}
	nf, err := parseNumberFormat(nfNode)
	if err != nil {
		return fh, err
	}
	fh.NumberFormat = nf

	if fh.NoOfSymbols, err = requireInt(n, "NoOfSymbols"); err != nil {
		return fh, err
	}
	if fh.Offset, err = requireInt(n, "Offset"); err != nil {
		return fh, err
	}
	if fh.Length, err = requireInt(n, "Length"); err != nil {
		return fh, err
	}
	if fh.Comment, err = requireText(n, "Comment"); err != nil {
		return fh, err
	}

	tagsNode, ok := findChild(n, "Tags")
	if !ok {
		return fh, fmt.Errorf("%w: Tags", errs.ErrMissingElement)
	}
	for _, s := range findChildren(tagsNode, "String") {
		fh.Tags = append(fh.Tags, format.FieldTag(s.Content))
	}

	return fh, nil
}

func parseNumberFormat(n xmlNode) (NumberFormat, error) {
	var nf NumberFormat
	var err error

	typeText, err := requireText(n, "Type")
	if err != nil {
		return nf, err
	}
	nf.Type = format.FieldType(typeText)

	if nf.NDec, err = requireInt(n, "nDec"); err != nil {
		return nf, err
	}
	if nf.UseThou, err = requireInt(n, "UseThou"); err != nil {
		return nf, err
	}
	if nf.Fmt, err = requireText(n, "Fmt"); err != nil {
		return nf, err
	}
	if nf.Dec, err = requireText(n, "Dec"); err != nil {
		return nf, err
	}
	if nf.Thou, err = requireText(n, "Thou"); err != nil {
		return nf, err
	}

	return nf, nil
}

// wire types for Emit, mirroring the parse-side element order exactly (spec.md §4.1:
// "element order is significant on write").

type wireNumberFormat struct {
	XMLName xml.Name `xml:"NumberFormat"`
	Type    string   `xml:"Type"`
	NDec    string   `xml:"nDec"`
	UseThou string   `xml:"UseThou"`
	Fmt     string   `xml:"Fmt"`
	Dec     string   `xml:"Dec"`
	Thou    string   `xml:"Thou"`
}

type wireTags struct {
	XMLName xml.Name `xml:"Tags"`
	String  []string `xml:"String"`
}

type wireFieldHeader struct {
	XMLName      xml.Name `xml:"QvdFieldHeader"`
	FieldName    string   `xml:"FieldName"`
	BitOffset    string   `xml:"BitOffset"`
	BitWidth     string   `xml:"BitWidth"`
	Bias         string   `xml:"Bias"`
	NumberFormat wireNumberFormat
	NoOfSymbols  string `xml:"NoOfSymbols"`
	Offset       string `xml:"Offset"`
	Length       string `xml:"Length"`
	Comment      string `xml:"Comment"`
	Tags         wireTags
}

type wireFields struct {
	XMLName        xml.Name `xml:"Fields"`
	QvdFieldHeader []wireFieldHeader
}

type wireLineageInfo struct {
	XMLName       xml.Name `xml:"LineageInfo"`
	Discriminator string   `xml:"Discriminator"`
	Statement     string   `xml:"Statement"`
}

type wireLineage struct {
	XMLName     xml.Name `xml:"Lineage"`
	LineageInfo wireLineageInfo
}

type wireTableHeader struct {
	XMLName             xml.Name `xml:"QvdTableHeader"`
	QvBuildNo           string   `xml:"QvBuildNo"`
	CreatorDoc          string   `xml:"CreatorDoc"`
	CreateUtcTime       string   `xml:"CreateUtcTime"`
	SourceCreateUtcTime string   `xml:"SourceCreateUtcTime"`
	SourceFileUtcTime   string   `xml:"SourceFileUtcTime"`
	SourceFileSize      string   `xml:"SourceFileSize"`
	StaleUtcTime        string   `xml:"StaleUtcTime"`
	TableName           string   `xml:"TableName"`
	Fields              wireFields
	Compression         string `xml:"Compression"`
	RecordByteSize      string `xml:"RecordByteSize"`
	NoOfRecords         string `xml:"NoOfRecords"`
	Offset              string `xml:"Offset"`
	Length              string `xml:"Length"`
	Lineage             wireLineage
	Comment             string `xml:"Comment"`
}

// EmitHeader serializes h as a `QvdTableHeader` XML document, UTF-8 with an XML
// declaration and no self-closing elements (spec.md §4.1).
func EmitHeader(h *TableHeader) ([]byte, error) {
	w := wireTableHeader{
		QvBuildNo:           strconv.Itoa(h.QvBuildNo),
		CreatorDoc:          h.CreatorDoc,
		CreateUtcTime:       h.CreateUtcTime,
		SourceCreateUtcTime: h.SourceCreateUtcTime,
		SourceFileUtcTime:   h.SourceFileUtcTime,
		SourceFileSize:      strconv.Itoa(h.SourceFileSize),
		StaleUtcTime:        h.StaleUtcTime,
		TableName:           h.TableName,
		Compression:         h.Compression,
		RecordByteSize:      strconv.Itoa(h.RecordByteSize),
		NoOfRecords:         strconv.Itoa(h.NoOfRecords),
		Offset:              strconv.Itoa(h.Offset),
		Length:              strconv.Itoa(h.Length),
		Comment:             h.Comment,
	}
	w.Lineage.LineageInfo.Discriminator = h.Lineage.Discriminator
	w.Lineage.LineageInfo.Statement = h.Lineage.Statement

	w.Fields.QvdFieldHeader = make([]wireFieldHeader, len(h.Fields))
	for i, fh := range h.Fields {
		tags := make([]string, len(fh.Tags))
		for j, t := range fh.Tags {
			tags[j] = string(t)
		}

		w.Fields.QvdFieldHeader[i] = wireFieldHeader{
			FieldName:   fh.FieldName,
			BitOffset:   strconv.Itoa(fh.BitOffset),
			BitWidth:    strconv.Itoa(fh.BitWidth),
			Bias:        strconv.Itoa(fh.Bias),
			NoOfSymbols: strconv.Itoa(fh.NoOfSymbols),
			Offset:      strconv.Itoa(fh.Offset),
			Length:      strconv.Itoa(fh.Length),
			Comment:     fh.Comment,
			NumberFormat: wireNumberFormat{
				Type:    fh.NumberFormat.Type.String(),
				NDec:    strconv.Itoa(fh.NumberFormat.NDec),
				UseThou: strconv.Itoa(fh.NumberFormat.UseThou),
				Fmt:     fh.NumberFormat.Fmt,
				Dec:     fh.NumberFormat.Dec,
				Thou:    fh.NumberFormat.Thou,
			},
			Tags: wireTags{String: tags},
		}
	}

	body, err := xml.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidXML, err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body))
	out = append(out, []byte(xml.Header)...)
	out = append(out, body...)

	return out, nil
}
