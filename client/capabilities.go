package client

import (
	"fmt"
	"strings"

	"github.com/luma/usenet/protocol"
)

// Capabilities is the set of features the server advertised on its
// last CAPABILITIES reply: one label per line, optionally followed by
// parameter tokens. Each successful negotiation replaces the set
// wholesale; there is no partial merge.
type Capabilities map[string][]string

// Has reports whether the server advertised the given label. Labels
// are matched case-insensitively, per RFC 3977.
func (c Capabilities) Has(label string) bool {
	_, ok := c[strings.ToUpper(label)]
	return ok
}

// Params returns the parameter tokens advertised with a label, e.g.
// the variants on "LIST".
func (c Capabilities) Params(label string) []string {
	return c[strings.ToUpper(label)]
}

// parseCapabilities reads the data block of a 101 reply.
func parseCapabilities(resp *protocol.RawResponse) (Capabilities, error) {
	caps := Capabilities{}

	block := resp.DataBlock()
	for i := 0; i < block.LineCount(); i++ {
		text, err := block.LineText(i)
		if err != nil {
			return nil, fmt.Errorf("failed to decode capability line: %w", err)
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		caps[strings.ToUpper(fields[0])] = fields[1:]
	}

	return caps, nil
}
