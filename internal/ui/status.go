package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Success prints a green status line.
func Success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warn prints a yellow status line.
func Warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "! %s\n", fmt.Sprintf(format, args...))
}

// Fail prints a red status line.
func Fail(w io.Writer, format string, args ...any) {
	failColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Info prints a cyan status line.
func Info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, "%s\n", fmt.Sprintf(format, args...))
}
