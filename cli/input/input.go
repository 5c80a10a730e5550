// Package input reads user input (passwords) from the terminal.
package input

import (
	"io"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, the controlling terminal
// is used directly.
var Terminal *term.Terminal

// ReadWriter combines an io.Reader and an io.Writer, it can be used to
// construct a Terminal from separate streams.
type ReadWriter struct {
	io.Reader
	io.Writer
}

// ReadPassword reads the user's password with prompt.
func ReadPassword(prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	return readSecurePassword(prompt)
}
