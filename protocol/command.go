package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand     = errors.New("unknown command could not be parsed")
	ErrMissingArgument    = errors.New("command is malformed, it appears to be missing its argument")
	ErrMissingAuthKeyword = errors.New("AUTHINFO is malformed, expected a USER or PASS keyword")

	PrefixCapabilities = []byte("CAPABILITIES")
	PrefixGroup        = []byte("GROUP")
	PrefixAuthInfo     = []byte("AUTHINFO")
	PrefixQuit         = []byte("QUIT")
	PrefixArticle      = []byte("ARTICLE")
	PrefixHead         = []byte("HEAD")
	PrefixBody         = []byte("BODY")
	PrefixList         = []byte("LIST")
	PrefixOver         = []byte("OVER")
)

// Command is a single client instruction to an NNTP server.
//
// Encode renders the command as exactly one wire line of
// space-separated ASCII tokens, without the terminating CRLF.
// Encoding is pure and cannot fail.
type Command interface {
	Encode() []byte

	// Name returns the command keyword, for logs and error messages.
	Name() string
}

// Capabilities asks the server for its capability list (RFC 3977 5.2).
type Capabilities struct{}

func (Capabilities) Encode() []byte { return []byte("CAPABILITIES") }
func (Capabilities) Name() string   { return "CAPABILITIES" }

// Group selects a newsgroup (RFC 3977 6.1.1).
type Group struct {
	Group string
}

func (g Group) Encode() []byte { return []byte("GROUP " + g.Group) }
func (Group) Name() string     { return "GROUP" }

// AuthInfoUser starts an AUTHINFO USER/PASS exchange (RFC 4643 2.3).
type AuthInfoUser struct {
	Username string
}

func (a AuthInfoUser) Encode() []byte { return []byte("AUTHINFO USER " + a.Username) }
func (AuthInfoUser) Name() string     { return "AUTHINFO USER" }

// AuthInfoPass completes an AUTHINFO USER/PASS exchange (RFC 4643 2.3).
type AuthInfoPass struct {
	Password string
}

func (a AuthInfoPass) Encode() []byte { return []byte("AUTHINFO PASS " + a.Password) }
func (AuthInfoPass) Name() string     { return "AUTHINFO PASS" }

// Quit asks the server to close the connection (RFC 3977 5.4).
type Quit struct{}

func (Quit) Encode() []byte { return []byte("QUIT") }
func (Quit) Name() string   { return "QUIT" }

// The commands below are reserved for the retrieval layer. They encode
// and parse like any other command but no session operation drives
// them yet; callers can issue them through the client's Conn directly.

// Article requests a complete article by message-id (RFC 3977 6.2.1).
type Article struct {
	MessageID string
}

func (a Article) Encode() []byte { return []byte("ARTICLE " + a.MessageID) }
func (Article) Name() string     { return "ARTICLE" }

// Head requests the headers of an article (RFC 3977 6.2.2).
type Head struct {
	MessageID string
}

func (h Head) Encode() []byte { return []byte("HEAD " + h.MessageID) }
func (Head) Name() string     { return "HEAD" }

// Body requests the body of an article (RFC 3977 6.2.3).
type Body struct {
	MessageID string
}

func (b Body) Encode() []byte { return []byte("BODY " + b.MessageID) }
func (Body) Name() string     { return "BODY" }

// List requests one of the LIST reports (RFC 3977 7.6). The keyword is
// optional; an empty keyword means LIST ACTIVE.
type List struct {
	Keyword string
}

func (l List) Encode() []byte {
	if l.Keyword == "" {
		return []byte("LIST")
	}
	return []byte("LIST " + l.Keyword)
}
func (List) Name() string { return "LIST" }

// Over requests overview records for a range of articles (RFC 3977 8.3).
type Over struct {
	Range string
}

func (o Over) Encode() []byte {
	if o.Range == "" {
		return []byte("OVER")
	}
	return []byte("OVER " + o.Range)
}
func (Over) Name() string { return "OVER" }

// ParseCommand parses a single wire line, without its CRLF, into a
// typed command. It is the inverse of Command.Encode and is what the
// mock server dispatches on.
func ParseCommand(line []byte) (Command, error) {
	switch {
	case bytes.Equal(line, PrefixCapabilities):
		return Capabilities{}, nil

	case bytes.Equal(line, PrefixQuit):
		return Quit{}, nil

	case bytes.HasPrefix(line, PrefixGroup):
		arg, err := argument(line, len(PrefixGroup))
		if err != nil {
			return nil, err
		}
		return Group{Group: arg}, nil

	case bytes.HasPrefix(line, PrefixAuthInfo):
		rest, err := argument(line, len(PrefixAuthInfo))
		if err != nil {
			return nil, err
		}
		switch {
		case len(rest) > 5 && rest[:5] == "USER ":
			return AuthInfoUser{Username: rest[5:]}, nil
		case len(rest) > 5 && rest[:5] == "PASS ":
			return AuthInfoPass{Password: rest[5:]}, nil
		}
		return nil, fmt.Errorf("failed to parse '%s': %w", string(line), ErrMissingAuthKeyword)

	case bytes.HasPrefix(line, PrefixArticle):
		arg, err := argument(line, len(PrefixArticle))
		if err != nil {
			return nil, err
		}
		return Article{MessageID: arg}, nil

	case bytes.HasPrefix(line, PrefixHead):
		arg, err := argument(line, len(PrefixHead))
		if err != nil {
			return nil, err
		}
		return Head{MessageID: arg}, nil

	case bytes.HasPrefix(line, PrefixBody):
		arg, err := argument(line, len(PrefixBody))
		if err != nil {
			return nil, err
		}
		return Body{MessageID: arg}, nil

	case bytes.HasPrefix(line, PrefixList):
		if bytes.Equal(line, PrefixList) {
			return List{}, nil
		}
		arg, err := argument(line, len(PrefixList))
		if err != nil {
			return nil, err
		}
		return List{Keyword: arg}, nil

	case bytes.HasPrefix(line, PrefixOver):
		if bytes.Equal(line, PrefixOver) {
			return Over{}, nil
		}
		arg, err := argument(line, len(PrefixOver))
		if err != nil {
			return nil, err
		}
		return Over{Range: arg}, nil

	default:
		return nil, fmt.Errorf("failed to parse '%s': %w", string(line), ErrUnknownCommand)
	}
}

// argument returns the token(s) following a command keyword of length
// n, checking that a single space separates them from the keyword.
func argument(line []byte, n int) (string, error) {
	if len(line) < n+2 || line[n] != ' ' {
		return "", fmt.Errorf("failed to parse '%s': %w", string(line), ErrMissingArgument)
	}
	return string(line[n+1:]), nil
}
