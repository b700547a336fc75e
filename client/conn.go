package client

import (
	"fmt"

	"github.com/luma/usenet/protocol"
)

// Transport is the byte stream a Conn drives. transport.Conn is the
// production implementation; tests substitute scripted ones.
type Transport interface {
	// ReadLine returns one wire line with its CRLF stripped.
	ReadLine() ([]byte, error)

	// WriteLine writes line followed by CRLF as a single write.
	WriteLine(line []byte) error

	Close() error
}

// Conn sequences commands and responses over a Transport: encode one
// command, write it, read and parse exactly one response.
//
// A Conn supports exactly one command in flight. Command fully
// consumes the response, data block included, before returning, so
// sequential callers get that for free; concurrent use is not
// supported at any level of this module.
type Conn struct {
	t Transport
}

// NewConn wraps a Transport. The Conn takes ownership: nothing else
// may read from or write to the transport afterwards.
func NewConn(t Transport) *Conn {
	return &Conn{t: t}
}

// Command performs one command/response round trip.
//
// Errors from the transport or the response parser mean the stream can
// no longer be trusted; the session should be closed. There are no
// retries here or anywhere above.
func (c *Conn) Command(cmd protocol.Command) (*protocol.RawResponse, error) {
	if err := c.t.WriteLine(cmd.Encode()); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", cmd.Name(), err)
	}

	resp, err := protocol.ReadResponse(c.t)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", cmd.Name(), err)
	}

	return resp, nil
}

// Close tears down the transport without a QUIT exchange.
func (c *Conn) Close() error {
	return c.t.Close()
}
