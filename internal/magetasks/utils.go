package magetasks

import (
	"errors"
	"os/exec"
	"strings"
)

// IsCommandNotFound reports whether err means the command could not be
// started at all.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") || strings.Contains(msg, "no such file or directory")
}

// optional runs a tool that may not be installed, downgrading a missing
// binary to a warning.
func optional(name, install string, run func() error) error {
	err := run()
	if err != nil && IsCommandNotFound(err) {
		PrintWarning(name + " not found (install: " + install + ")")
		return nil
	}
	return err
}
