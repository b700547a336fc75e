// Package client implements an NNTP (RFC 3977) client session: one
// connection, its authentication state, its capability set, and its
// currently selected newsgroup.
//
// Sessions are strictly synchronous. One blocking call at a time, no
// background goroutines, no locks; a session owns its transport
// outright. Independent sessions can run in as many goroutines as you
// like, they share nothing.
package client

import (
	"go.uber.org/zap"

	"github.com/luma/usenet/protocol"
)

// Client is a single NNTP session.
type Client struct {
	conn   *Conn
	config Config

	greeting     *protocol.RawResponse
	capabilities Capabilities
	group        *Group
	closed       bool

	log *zap.Logger
}

// NewClient runs the session establishment sequence over an already
// dialed transport whose greeting has been consumed: authentication
// when the config carries credentials, then capability negotiation,
// then the configured initial group, if any.
//
// Config.Connect is the usual entry point; NewClient exists for
// callers that bring their own transport.
func NewClient(t Transport, greeting *protocol.RawResponse, config Config) (*Client, error) {
	log := config.Log
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		conn:         NewConn(t),
		config:       config,
		greeting:     greeting,
		capabilities: Capabilities{},
		log:          log,
	}

	if config.Username != "" {
		if config.TLS == nil {
			log.Warn("TLS is not enabled, credentials will be sent in the clear")
		}

		if err := c.authenticate(config.Username, config.Password); err != nil {
			c.conn.Close()
			return nil, err
		}
	}

	if _, err := c.UpdateCapabilities(); err != nil {
		c.conn.Close()
		return nil, err
	}

	if config.Group != "" {
		if _, err := c.SetGroup(config.Group); err != nil {
			c.conn.Close()
			return nil, err
		}
	}

	return c, nil
}

// Config returns the configuration snapshot this session was built
// from.
func (c *Client) Config() Config {
	return c.config
}

// Greeting returns the server's greeting response.
func (c *Client) Greeting() *protocol.RawResponse {
	return c.greeting
}

// Group returns the currently selected group, or nil.
func (c *Client) Group() *Group {
	return c.group
}

// Capabilities returns the capability set from the last negotiation.
func (c *Client) Capabilities() Capabilities {
	return c.capabilities
}

// Conn exposes the underlying command/response sequencer, for commands
// the session does not model (ARTICLE, BODY, LIST, OVER, ...).
func (c *Client) Conn() *Conn {
	return c.conn
}

// authenticate performs the two-step AUTHINFO USER/PASS exchange.
// USER must be answered with 381 before PASS is sent; anything else
// aborts, and the password never goes on the wire.
func (c *Client) authenticate(username, password string) error {
	c.log.Debug("Sending AUTHINFO USER")

	userResp, err := c.conn.Command(protocol.AuthInfoUser{Username: username})
	if err != nil {
		return err
	}

	if userResp.Code().Kind() != protocol.KindPasswordRequired {
		return failure(userResp, "AUTHINFO USER failed")
	}

	c.log.Debug("Sending AUTHINFO PASS")

	passResp, err := c.conn.Command(protocol.AuthInfoPass{Password: password})
	if err != nil {
		return err
	}

	if passResp.Code().Kind() != protocol.KindAuthenticationAccepted {
		return failure(passResp, "AUTHINFO PASS failed")
	}

	c.log.Debug("Successfully authenticated")

	return nil
}

// UpdateCapabilities re-runs the CAPABILITIES exchange and replaces
// the session's capability set wholesale. On any error the previous
// set is kept untouched.
func (c *Client) UpdateCapabilities() (Capabilities, error) {
	if c.closed {
		return nil, ErrClosed
	}

	resp, err := c.conn.Command(protocol.Capabilities{})
	if err != nil {
		return nil, err
	}

	if resp.Code().Kind() != protocol.KindCapabilitiesFollow {
		return nil, failure(resp, "CAPABILITIES failed")
	}

	caps, err := parseCapabilities(resp)
	if err != nil {
		return nil, err
	}

	c.capabilities = caps

	return caps, nil
}

// SetGroup selects a newsgroup, replacing the session's current group
// on success. A 411 reply returns ErrNoSuchGroup; any other unexpected
// code returns a Failure. Either way the current group is left exactly
// as it was.
func (c *Client) SetGroup(name string) (*Group, error) {
	if c.closed {
		return nil, ErrClosed
	}

	resp, err := c.conn.Command(protocol.Group{Group: name})
	if err != nil {
		return nil, err
	}

	switch resp.Code().Kind() {
	case protocol.KindGroupSelected:
		group, err := parseGroup(resp)
		if err != nil {
			return nil, err
		}

		c.group = group
		c.log.Debug("Selected group",
			zap.String("group", group.Name),
			zap.Int64("count", group.Count))

		return group, nil

	case protocol.KindNoSuchNewsgroup:
		return nil, ErrNoSuchGroup

	default:
		return nil, failure(resp, "GROUP "+name+" failed")
	}
}

// Close performs the QUIT exchange and tears down the transport. On a
// 205 reply the group selection is cleared and the session becomes
// unusable; on any other reply the session is left open and a Failure
// is returned. Closing an already closed session is a no-op.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}

	resp, err := c.conn.Command(protocol.Quit{})
	if err != nil {
		// The stream is already broken; all we can do is drop it.
		c.closed = true
		c.group = nil
		c.conn.Close()
		return err
	}

	if resp.Code().Kind() != protocol.KindConnectionClosing {
		return failure(resp, "QUIT failed")
	}

	c.closed = true
	c.group = nil

	return c.conn.Close()
}
