package protocol

// This package implements parsing and serialising for the NNTP wire
// protocol (RFC 3977, with the AUTHINFO extension from RFC 4643).
//
// It is deliberately low level: it deals in commands, responses, and
// raw bytes. Session state (authentication, the selected group, the
// capability set) lives in the client package which is built on top
// of this one.
//
// - `Command`     - A typed client instruction (CAPABILITIES, GROUP, ...).
// - `RawResponse` - A single parsed server response.
// - `DataBlock`   - The optional multi-line body of a response.
//
// === General Syntax
//
// - lines are `\r\n` delimited
// - commands are a single line of space-separated ASCII tokens, e.g.
//
//   ```
//     GROUP misc.test\r\n
//   ```
//
// - every response starts with a status line: a 3 digit code, a
//   separator byte, then free-form text
//
//   ```
//     211 1234 3000234 3002322 misc.test\r\n
//   ```
//
// === Multi-line responses
//
// A fixed subset of response codes introduce a data block: zero or
// more content lines followed by a terminator line consisting of a
// single ".". A genuine content line that starts with "." is escaped
// by the sender with one extra leading dot ("dot-stuffing"); the
// parser removes it again. For example the block
//
//   ```
//     101 Capability list follows\r\n
//     VERSION 2\r\n
//     READER\r\n
//     .\r\n
//   ```
//
// carries the two content lines `VERSION 2` and `READER`.
//
// === Text encoding
//
// NNTP does not require response payloads to be UTF-8, or any other
// text encoding, so parsing never decodes bytes as text. RawResponse
// and DataBlock expose explicit accessors that validate strictly,
// replace invalid sequences, or trust the caller.
//
// === Turn taking
//
// The protocol is strictly request/response: the client sends one
// command and reads exactly one response, including its full data
// block, before sending the next command. Nothing in this package
// enforces that; the client package does.
