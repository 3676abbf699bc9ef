// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the leveled logger shared by the CLI commands.
package logging

import (
	"io"

	"github.com/hashicorp/go-hclog"
)

// Name is the logger name shown on every line.
const Name = "stilyagi"

// New returns a logger that only reports errors, or everything down to
// debug when verbose is set. A nil w discards output.
func New(verbose bool, w io.Writer) hclog.Logger {
	level := hclog.Error
	if verbose {
		level = hclog.Debug
	}
	if w == nil {
		w = io.Discard
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  level,
		Output: w,
	})
}
