package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var (
	ErrMalformedResponse = errors.New("response is malformed, it must start with a 3 digit code and a separator byte")
	ErrTruncatedResponse = errors.New("response is truncated, the stream closed mid frame")
	ErrInvalidUTF8       = errors.New("contents are not valid UTF-8")
)

// LineReader yields one CRLF-terminated wire line at a time, with the
// CRLF already stripped. The transport package implements it over a
// deadline-aware TCP stream; NewLineReader adapts any io.Reader for
// tests and fixtures.
type LineReader interface {
	ReadLine() ([]byte, error)
}

// ReadResponse reads exactly one response from r: the status line,
// plus the full data block when the code calls for one.
//
// No byte is decoded as text. A stream that ends before a complete
// status line, or before the data block terminator, fails with
// ErrTruncatedResponse; a status line that does not start with 3 ASCII
// digits fails with ErrMalformedResponse. Both mean the stream can no
// longer be trusted and the connection should be closed.
func ReadResponse(r LineReader) (*RawResponse, error) {
	line, err := r.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("failed to read status line: %w", truncated(err))
	}

	if len(line) < 4 || !isDigit(line[0]) || !isDigit(line[1]) || !isDigit(line[2]) {
		return nil, fmt.Errorf("failed to parse '%s': %w", decodeLossy(line), ErrMalformedResponse)
	}

	code := ResponseCode(line[0]-'0')*100 +
		ResponseCode(line[1]-'0')*10 +
		ResponseCode(line[2]-'0')

	resp := &RawResponse{code: code, firstLine: line}

	if !code.IsMultiline() {
		return resp, nil
	}

	block := &DataBlock{}

	for {
		l, err := r.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("failed to read data block for %d: %w", code, truncated(err))
		}

		if len(l) == 1 && l[0] == '.' {
			// The terminator. It is consumed but never stored.
			break
		}

		if len(l) >= 2 && l[0] == '.' && l[1] == '.' {
			// Undo dot-stuffing: the sender doubled a leading "." so
			// the line would not read as the terminator.
			l = l[1:]
		}

		start := len(block.payload)
		block.payload = append(block.payload, l...)
		block.boundaries = append(block.boundaries, [2]int{start, len(block.payload)})
		block.payload = append(block.payload, '\r', '\n')
	}

	resp.block = block

	return resp, nil
}

// NewLineReader adapts an io.Reader into a LineReader. Lines are read
// up to '\n'; the trailing CRLF (or bare LF) is stripped.
func NewLineReader(r io.Reader) LineReader {
	return &bufioLineReader{r: bufio.NewReader(r)}
}

type bufioLineReader struct {
	r *bufio.Reader
}

func (b *bufioLineReader) ReadLine() ([]byte, error) {
	line, err := b.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return TrimCRLF(line), nil
}

// TrimCRLF strips one trailing "\r\n" or "\n" from a wire line.
func TrimCRLF(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// truncated maps end-of-stream errors onto ErrTruncatedResponse so
// callers can tell "the peer hung up mid response" apart from garbage
// on the wire. Timeouts and other transport errors pass through.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedResponse
	}
	return err
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
