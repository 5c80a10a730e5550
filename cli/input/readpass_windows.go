//go:build windows

package input

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// readSecurePassword reads the user's password with prompt from the console.
func readSecurePassword(prompt string) (string, error) {
	_, err := fmt.Fprint(os.Stdout, prompt)
	if err != nil {
		return "", err
	}
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout)
	return string(pass), err
}
