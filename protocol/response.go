package protocol

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RawResponse is a single parsed server response.
//
// The contents are guaranteed to be a syntactically valid NNTP
// response. They are NOT guaranteed to be UTF-8, or any other text
// encoding; use the Text accessors to decode explicitly.
type RawResponse struct {
	code      ResponseCode
	firstLine []byte
	block     *DataBlock
}

// Code returns the response's status code.
func (r *RawResponse) Code() ResponseCode {
	return r.code
}

// FirstLine returns the raw bytes of the status line, without its CRLF.
func (r *RawResponse) FirstLine() []byte {
	return r.firstLine
}

// FirstLineWithoutCode returns the status line minus the 3 digit code
// and its separator byte.
func (r *RawResponse) FirstLineWithoutCode() []byte {
	// Infallible barring bugs in the parsing layer, which guarantees
	// at least 4 bytes.
	return r.firstLine[4:]
}

// FirstLineText decodes the status line as UTF-8, failing with
// ErrInvalidUTF8 if it is not valid.
func (r *RawResponse) FirstLineText() (string, error) {
	return decodeStrict(r.firstLine)
}

// FirstLineTextLossy decodes the status line as UTF-8, replacing any
// invalid sequences with the Unicode replacement character.
func (r *RawResponse) FirstLineTextLossy() string {
	return decodeLossy(r.firstLine)
}

// FirstLineTextTrusted converts the status line to a string without
// validating it. NNTP responses are not required to be UTF-8, so this
// transfers responsibility for validity to the caller; use it only
// when the contents are independently guaranteed to be valid text.
func (r *RawResponse) FirstLineTextTrusted() string {
	return string(r.firstLine)
}

// HasDataBlock returns true if this is a multi-line response carrying
// a data block.
func (r *RawResponse) HasDataBlock() bool {
	return r.block != nil
}

// DataBlock returns the multi-line data block, or nil for single-line
// responses.
func (r *RawResponse) DataBlock() *DataBlock {
	return r.block
}

// DataBlock is the multi-line body of an NNTP response
// (RFC 3977 3.1.1), with the dot-stuffing already undone.
//
// The payload is a contiguous buffer holding every content line
// followed by its CRLF; the terminator line is not part of it. Line
// boundaries index into the payload and always EXCLUDE the CRLF, so
// each boundary spans exactly one content line's bytes.
type DataBlock struct {
	payload    []byte
	boundaries [][2]int
}

// Payload returns the raw bytes of the block.
func (d *DataBlock) Payload() []byte {
	return d.payload
}

// PayloadText decodes the whole payload as UTF-8, failing with
// ErrInvalidUTF8 if it is not valid.
func (d *DataBlock) PayloadText() (string, error) {
	return decodeStrict(d.payload)
}

// PayloadTextLossy decodes the whole payload as UTF-8, replacing any
// invalid sequences with the Unicode replacement character.
func (d *DataBlock) PayloadTextLossy() string {
	return decodeLossy(d.payload)
}

// Line returns the i-th content line, without its CRLF. The returned
// slice aliases the payload buffer.
func (d *DataBlock) Line(i int) []byte {
	b := d.boundaries[i]
	return d.payload[b[0]:b[1]]
}

// LineText decodes the i-th content line as UTF-8, failing with
// ErrInvalidUTF8 if it is not valid.
func (d *DataBlock) LineText(i int) (string, error) {
	return decodeStrict(d.Line(i))
}

// Lines returns every content line, without CRLFs. The returned slices
// alias the payload buffer.
func (d *DataBlock) Lines() [][]byte {
	lines := make([][]byte, len(d.boundaries))
	for i := range d.boundaries {
		lines[i] = d.Line(i)
	}
	return lines
}

// LineCount returns the number of content lines received before the
// terminator.
func (d *DataBlock) LineCount() int {
	return len(d.boundaries)
}

// PayloadLen returns the number of bytes in the block.
func (d *DataBlock) PayloadLen() int {
	return len(d.payload)
}

// IsEmpty returns true if the block has no content lines.
func (d *DataBlock) IsEmpty() bool {
	return len(d.boundaries) == 0
}

func decodeStrict(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("'%s': %w", decodeLossy(b), ErrInvalidUTF8)
	}
	return string(b), nil
}

func decodeLossy(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
