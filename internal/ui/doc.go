// Package ui renders the operator-facing output of the eggo CLI: the node
// and tunnel tables, progress spinners, coloured status lines, and the
// interactive teardown confirmation.
//
// Everything degrades to plain text when stdout is not a terminal.
package ui
