package client

import (
	"errors"
	"fmt"

	"github.com/luma/usenet/protocol"
)

var (
	// ErrNoSuchGroup is returned by SetGroup when the server answers
	// 411. Missing groups are an expected outcome that callers branch
	// on, so they are kept apart from Failure.
	ErrNoSuchGroup = errors.New("no such newsgroup")

	// ErrClosed is returned when a command is issued on a session that
	// has already completed its QUIT exchange.
	ErrClosed = errors.New("session is closed")
)

// Failure is returned when a response is syntactically well-formed but
// its code is not the one the exchange required, e.g. AUTHINFO PASS
// answered with anything but 281. The raw response is preserved for
// diagnostics.
type Failure struct {
	Code protocol.ResponseCode
	Msg  string
	Resp *protocol.RawResponse
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: server answered %d (%s)", f.Msg, f.Code, f.Code.Kind())
}

func failure(resp *protocol.RawResponse, msg string) *Failure {
	return &Failure{
		Code: resp.Code(),
		Msg:  msg,
		Resp: resp,
	}
}
