// Package diag defines the diagnostic records produced by the analysis
// engine. Diagnostics are the only way lexical and structural anomalies
// surface: analysis never fails, it annotates.
package diag

import "fmt"

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityError marks a construct the language cannot accept
	// (unterminated string, unmatched bracket).
	SeverityError Severity = iota

	// SeverityWarning marks a recoverable oddity (override grammar
	// ignored, suspicious construct).
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal finding attached to a byte range of the
// document. Start is inclusive, End exclusive.
type Diagnostic struct {
	Start    int
	End      int
	Severity Severity
	Message  string
}

// New creates a diagnostic covering [start, end).
func New(start, end int, sev Severity, msg string) Diagnostic {
	return Diagnostic{Start: start, End: end, Severity: sev, Message: msg}
}

// Errorf creates an error diagnostic with a formatted message.
func Errorf(start, end int, format string, args ...any) Diagnostic {
	return New(start, end, SeverityError, fmt.Sprintf(format, args...))
}

// Warningf creates a warning diagnostic with a formatted message.
func Warningf(start, end int, format string, args ...any) Diagnostic {
	return New(start, end, SeverityWarning, fmt.Sprintf(format, args...))
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%d:%d) %s: %s", d.Start, d.End, d.Severity, d.Message)
}
