// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clierr carries process exit codes on errors returned by commands.
package clierr

import (
	"errors"
	"fmt"
)

// Exit codes used by stilyagi.
const (
	// CodeFailure is a runtime failure: I/O, network, malformed input files.
	CodeFailure = 1
	// CodeUsage is a bad invocation: flags, arguments or configuration.
	CodeUsage = 2
)

// ExitCoder is implemented by errors that choose their exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError wraps a cause with an exit code. errors.Is/As see through it.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
}

// ExitCode implements ExitCoder.
func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// Usage marks err as a bad invocation. A nil err stays nil.
func Usage(err error) error {
	return With(CodeUsage, err)
}

// Failure marks err as a runtime failure. A nil err stays nil.
func Failure(err error) error {
	return With(CodeFailure, err)
}

// With attaches code to err without changing its message. An error that
// already carries a code keeps it.
func With(code int, err error) error {
	if err == nil {
		return nil
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return &ExitError{code: normalize(code), cause: err}
}

// Usagef builds a usage error from a format string.
func Usagef(format string, args ...any) error {
	return &ExitError{code: CodeUsage, msg: fmt.Sprintf(format, args...)}
}

// ExitCodeOf extracts the exit code from err, defaulting to CodeFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return CodeFailure
}

func normalize(code int) int {
	if code <= 0 {
		return CodeFailure
	}
	return code
}
