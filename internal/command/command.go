// Package command implements the command model (component D): the
// Read/Write/ExpiresWrite shapes, eager argument parsing, and the
// name-to-parser registry the connection loop dispatches through.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

// ParseError is returned when a command's arguments are well-framed RESP but
// invalid for that command: wrong arity, an unknown option, or a value that
// fails to parse where a number is expected.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

func parseErrf(format string, args ...any) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// ErrBusy is RESTORE's error when the target key exists without REPLACE.
var ErrBusy = errors.New("Target key name is busy")

// The unknown-command reply is built per-name by UnknownCommandReply below.

// Command is implemented by every parsed, ready-to-apply request.
type Command interface {
	Name() string
}

// ReadCommand takes a shared dictionary view and produces a reply with no
// state change and no write record.
type ReadCommand interface {
	Command
	ApplyRead(v *dict.View) (resp.Frame, error)
}

// ExpiresKind tags the shape of the expiration-index update a write reports.
type ExpiresKind uint8

const (
	ExpiresNone ExpiresKind = iota
	ExpiresUpdate
)

// ExpiresStatus lets a write report an expiry change without the dispatcher
// re-reading the entry to splice the expiration index.
type ExpiresStatus struct {
	Kind   ExpiresKind
	Key    []byte
	Before int64
	New    int64
}

// WriteCommand takes an exclusive dictionary view, mutates it, and must be
// reflected in an emitted write record (component G). WireArgs returns the
// fully-resolved arguments for that record's payload.
type WriteCommand interface {
	Command
	ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error)
	WireArgs() WireCmd
}

// Parser parses a command's argument frames (already split from the request
// array, not including the command name) into a ready Command.
type Parser func(args [][]byte) (Command, error)

var registry = map[string]Parser{}

func register(name string, p Parser) {
	registry[strings.ToLower(name)] = p
}

// Lookup resolves a command name (case-insensitive) to its parser.
func Lookup(name string) (Parser, bool) {
	p, ok := registry[strings.ToLower(name)]
	return p, ok
}

// UnknownCommandReply builds the exact reply spec.md requires for a name
// that matches no registered command.
func UnknownCommandReply(name string) resp.Frame {
	return resp.Err(fmt.Sprintf("ERR unknown command '%s'", name))
}

// wrongArity is the shared parse-error message for arity mismatches.
func wrongArity(name string) error {
	return parseErrf("ERR wrong number of arguments for '%s' command", strings.ToLower(name))
}
