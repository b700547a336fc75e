package transport

import (
	"crypto/tls"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	// TLS, when non-nil, upgrades the connection to TLS during the
	// dial. Leave nil for a plaintext connection, or use
	// DefaultTLSConfig for a stock configuration built from the
	// server's domain name.
	TLS *tls.Config

	// DialTimeout bounds connection establishment. Defaults to 30s.
	DialTimeout time.Duration

	// ReadTimeout is applied to every individual read. Zero means
	// reads block indefinitely.
	ReadTimeout time.Duration

	Log *zap.Logger
}

// DefaultTLSConfig returns the configuration used when a caller wants
// TLS but has nothing more specific than the server's domain name.
func DefaultTLSConfig(domain string) *tls.Config {
	return &tls.Config{
		ServerName: domain,
		MinVersion: tls.VersionTLS12,
	}
}
