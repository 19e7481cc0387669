// Package alerts writes short status notices for command results.
package alerts

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a potential issue or important notice.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
	// LevelSuccess indicates successful completion of an operation.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Style returns the terminal style of the level.
func (l Level) Style() *pterm.Style {
	switch l {
	case LevelError:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case LevelWarning:
		return pterm.NewStyle(pterm.FgYellow)
	case LevelInfo:
		return pterm.NewStyle(pterm.FgCyan)
	case LevelSuccess:
		return pterm.NewStyle(pterm.FgGreen)
	default:
		return pterm.NewStyle(pterm.FgDefault)
	}
}

// Alert is a single status notice.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, format string, args ...any) *Alert {
	return &Alert{Level: level, Message: fmt.Sprintf(format, args...)}
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds indented detail lines.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the alert without styling.
func (a *Alert) String() string {
	msg := a.Level.String() + ": " + a.Message
	if a.Err != nil {
		msg += fmt.Sprintf(": %v", a.Err)
	}
	return msg
}

// Writer prints alerts to an io.Writer.
type Writer struct {
	w     io.Writer
	color bool
	quiet bool
}

// NewWriter creates a Writer. With quiet set only warnings and errors
// are printed.
func NewWriter(w io.Writer, color, quiet bool) *Writer {
	return &Writer{w: w, color: color, quiet: quiet}
}

// Write prints a.
func (w *Writer) Write(a *Alert) error {
	if w.quiet && a.Level > LevelWarning {
		return nil
	}
	line := a.String()
	if w.color {
		line = a.Level.Style().Sprint(line)
	}
	if _, err := fmt.Fprintln(w.w, line); err != nil {
		return err
	}
	for _, d := range a.Details {
		if _, err := fmt.Fprintf(w.w, "   %s\n", d); err != nil {
			return err
		}
	}
	return nil
}
