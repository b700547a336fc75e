package client

import (
	"crypto/tls"
	"time"

	"go.uber.org/zap"

	"github.com/luma/usenet/transport"
)

// Config describes how to establish a session. The zero value connects
// in plaintext, without authentication, with no group selected.
//
// Connect takes the Config by value, so a session holds its own
// snapshot: mutating a Config after connecting never affects sessions
// already built from it.
type Config struct {
	// TLS, when non-nil, upgrades the connection during the dial. Use
	// transport.DefaultTLSConfig to build one from a domain name.
	TLS *tls.Config

	// Username and Password, when set, run an AUTHINFO USER/PASS
	// exchange immediately after the transport is up (RFC 4643 2.3).
	// Sending credentials without TLS is allowed but logged at
	// warning level.
	Username string
	Password string

	// Group, when set, is selected as the final step of connecting.
	// Its failure fails the connect.
	Group string

	// ReadTimeout bounds every individual read on the connection.
	ReadTimeout time.Duration

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration

	// Log receives diagnostics. Defaults to a no-op logger; the core
	// keeps no global logging state.
	Log *zap.Logger
}

// Connect resolves the configuration into a live session: dial,
// authenticate when credentials are configured, negotiate
// capabilities, then select the initial group when one is configured.
// Any step failing fails the whole connect and tears the transport
// down.
func (c Config) Connect(addr string) (*Client, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	c.Log = log

	t, greeting, err := transport.Dial(addr, transport.Options{
		TLS:         c.TLS,
		DialTimeout: c.DialTimeout,
		ReadTimeout: c.ReadTimeout,
		Log:         log.Named("transport"),
	})
	if err != nil {
		return nil, err
	}

	return NewClient(t, greeting, c)
}
