package protocol

import (
	"fmt"
	"io"
)

var (
	Terminal      = []byte("\r\n")
	BlockTerminal = []byte(".\r\n")
)

// WriteStatus writes a single status line: the 3 digit code, a space,
// then the text.
func WriteStatus(w io.Writer, code ResponseCode, text string) error {
	_, err := fmt.Fprintf(w, "%03d %s\r\n", uint16(code), text)
	return err
}

// WriteDataBlock writes the given content lines as a multi-line data
// block, applying dot-stuffing to any line that starts with "." and
// finishing with the terminator line. Lines must not contain CR or LF.
func WriteDataBlock(w io.Writer, lines ...[]byte) error {
	for _, line := range lines {
		if len(line) > 0 && line[0] == '.' {
			if _, err := w.Write([]byte{'.'}); err != nil {
				return err
			}
		}

		if _, err := w.Write(line); err != nil {
			return err
		}

		if _, err := w.Write(Terminal); err != nil {
			return err
		}
	}

	_, err := w.Write(BlockTerminal)
	return err
}
