// Package codes classifies pipeline failures and maps them to process exit codes.
package codes

import (
	"errors"
	"fmt"
)

// Kind identifies where in a task a failure happened
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindRead
	KindCompile
	KindWrite
)

// ExitCodes maps failure kinds to process exit codes
var ExitCodes = map[Kind]int{
	KindUnknown: 1,
	KindConfig:  2,
	KindRead:    3,
	KindCompile: 4,
	KindWrite:   5,
}

// Descriptions maps failure kinds to human readable descriptions
var Descriptions = map[Kind]string{
	KindUnknown: "Unknown error",
	KindConfig:  "Invalid configuration",
	KindRead:    "Missing or unreadable source",
	KindCompile: "Compile errors",
	KindWrite:   "Cannot write output",
}

func (k Kind) String() string {
	return Describe(k)
}

// Error wraps a failure with its kind and the file it concerns
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}

	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err classified as kind, or nil if err is nil
func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// ExitCode returns the process exit code for err; 0 when err is nil
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	return ExitCodes[KindOf(err)]
}

// Describe returns the description for a kind, or a generic message if unknown
func Describe(k Kind) string {
	if msg, ok := Descriptions[k]; ok {
		return msg
	}

	return "Unknown error"
}
