// Package ui holds the terminal interaction surface: styled output, the
// confirmation prompt, and the no-echo password prompt.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

func init() {
	// Respect NO_COLOR standard (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func Success(s string) string {
	return successStyle.Render("✓ " + s)
}

func Error(s string) string {
	return errorStyle.Render("✗ " + s)
}

func Warn(s string) string {
	return warnStyle.Render("⚠ " + s)
}

func Path(s string) string {
	return pathStyle.Render("  " + s)
}

// Confirm asks a [y/N] question on out and reads the answer from in.
// Anything but an explicit yes declines.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// PromptPassword reads a password off stdin without echoing when stdin is
// a terminal, and as a plain line otherwise (so the tool stays pipeable).
func PromptPassword(out io.Writer, prompt string) (string, error) {
	fmt.Fprintf(out, "%s: ", prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bs, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", errors.WithMessage(err, "reading password")
		}
		return string(bs), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.WithMessage(err, "reading password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
