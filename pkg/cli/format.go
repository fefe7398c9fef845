// Package cli provides shared formatting helpers for the xrvrf CLI.
package cli

import (
	"os"
	"strings"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

// Bold wraps s in ANSI bold. Returns s unchanged when NO_COLOR is set.
func Bold(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// Dim wraps s in ANSI dim. Returns s unchanged when NO_COLOR is set.
func Dim(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}

// Command colors a device command for display: removals red, context
// commands bold, everything else green.
func Command(cmd string) string {
	switch {
	case strings.HasPrefix(cmd, "no "):
		return Red(cmd)
	case strings.HasPrefix(cmd, "vrf "):
		return Bold(cmd)
	default:
		return Green(cmd)
	}
}

// Indent prefixes every command with the nesting its context implies, so
// the list reads like the device configuration it produces.
func Indent(commands []string) []string {
	out := make([]string, len(commands))
	for i, c := range commands {
		if strings.HasPrefix(c, "vrf ") {
			out[i] = c
			continue
		}
		out[i] = "  " + c
	}
	return out
}

// DiffLine colors one line of a unified diff.
func DiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return Bold(line)
	case strings.HasPrefix(line, "@@"):
		return Dim(line)
	case strings.HasPrefix(line, "+"):
		return Green(line)
	case strings.HasPrefix(line, "-"):
		return Red(line)
	}
	return line
}
