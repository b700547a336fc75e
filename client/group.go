package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luma/usenet/protocol"
)

// Group describes the currently selected newsgroup as reported by the
// server's 211 reply: an estimated article count and the low and high
// water marks of the article numbers.
type Group struct {
	Name  string
	Count int64
	Low   int64
	High  int64
}

// parseGroup reads a "211 number low high group" first line.
func parseGroup(resp *protocol.RawResponse) (*Group, error) {
	text, err := resp.FirstLineText()
	if err != nil {
		return nil, fmt.Errorf("failed to decode GROUP reply: %w", err)
	}

	// Drop the leading "211 ".
	fields := strings.Fields(text)[1:]
	if len(fields) < 4 {
		return nil, fmt.Errorf("short GROUP reply '%s': %w", text, protocol.ErrMalformedResponse)
	}

	count, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad article count in GROUP reply '%s': %w", text, protocol.ErrMalformedResponse)
	}

	low, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad low water mark in GROUP reply '%s': %w", text, protocol.ErrMalformedResponse)
	}

	high, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad high water mark in GROUP reply '%s': %w", text, protocol.ErrMalformedResponse)
	}

	return &Group{
		Name:  fields[3],
		Count: count,
		Low:   low,
		High:  high,
	}, nil
}
