// Package transport owns the byte stream between an NNTP client and
// its server: dialing (plain or TLS), the per-read timeout, and the
// blocking line-oriented read and write primitives the protocol layer
// is built on.
package transport

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/luma/usenet/protocol"
)

const (
	defaultDialTimeout = 30 * time.Second

	// readBufferSize comfortably fits any status line and the long
	// lines that show up in overview data blocks.
	readBufferSize = 32768
)

// Conn is an established connection to an NNTP server. It is not safe
// for concurrent use: the session layer guarantees a single command in
// flight, which is the only discipline a Conn supports.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader

	readTimeout time.Duration

	log *zap.Logger
}

// Dial establishes a TCP connection to addr, upgrading to TLS when the
// options carry a TLS configuration, and reads the server's
// unsolicited greeting as the first response.
//
// The greeting is returned alongside the connection; callers decide
// whether its code (usually 200 or 201) suits them.
func Dial(addr string, opts Options) (*Conn, *protocol.RawResponse, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = defaultDialTimeout
	}

	var (
		conn net.Conn
		err  error
	)

	if opts.TLS != nil {
		dialer := &net.Dialer{Timeout: dialTimeout}
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, opts.TLS)
	} else {
		conn, err = net.DialTimeout("tcp", addr, dialTimeout)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c := &Conn{
		conn:        conn,
		r:           bufio.NewReaderSize(conn, readBufferSize),
		readTimeout: opts.ReadTimeout,
		log:         log,
	}

	greeting, err := protocol.ReadResponse(c)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to read greeting from %s: %w", addr, err)
	}

	log.Debug("Connected",
		zap.String("addr", addr),
		zap.Bool("tls", opts.TLS != nil),
		zap.String("greeting", greeting.FirstLineTextLossy()))

	return c, greeting, nil
}

// ReadLine reads one CRLF-terminated line, returning it with the CRLF
// stripped. Each call re-arms the read deadline when a read timeout is
// configured. A stream that ends mid-line fails with
// io.ErrUnexpectedEOF so the protocol layer can report truncation.
func (c *Conn) ReadLine() ([]byte, error) {
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, err
		}
	}

	line, err := c.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return protocol.TrimCRLF(line), nil
}

// WriteLine writes line followed by CRLF as a single write.
func (c *Conn) WriteLine(line []byte) error {
	buf := make([]byte, 0, len(line)+2)
	buf = append(buf, line...)
	buf = append(buf, '\r', '\n')

	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	return nil
}

// Close tears down the underlying connection. It does not send QUIT;
// the session layer owns the shutdown exchange.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the address of the peer.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
