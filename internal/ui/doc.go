// Package ui provides theme and color support for the application's user interface.
// It defines ANSI color helpers for the plain CLI output and lipgloss styles
// for the boxed summary and the TUI.
//
// This package is designed to be a shared dependency for packages that need
// color output, reducing coupling between business logic and presentation.
package ui
