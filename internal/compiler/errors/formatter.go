package errors

import (
	"fmt"
	"strings"
)

// FormatError renders e as a human-readable message for terminal output.
func FormatError(e *LangError) string {
	var b strings.Builder

	icon := severityIcon(e.Severity)
	fmt.Fprintf(&b, "%s %s: %s\n", icon, categoryDisplayName(e.Category), e.Message)

	if e.Location.Line > 0 {
		fmt.Fprintf(&b, "  at line %d, column %d\n", e.Location.Line, e.Location.Column)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatErrorList renders a summary header followed by each formatted error.
func FormatErrorList(errs ErrorList) string {
	if len(errs) == 0 {
		return "no errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s)\n\n", len(errs))
	for i, e := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Format())
	}
	return b.String()
}

// FormatCompact renders a single-line form suitable for log output.
func FormatCompact(e *LangError) string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s [%s]", e.Location.Line, e.Location.Column, e.Severity, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Severity, e.Message, e.Code)
}

func severityIcon(s Severity) string {
	switch s {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	default:
		return "❓"
	}
}

func categoryDisplayName(c Category) string {
	switch c {
	case CategoryGuest:
		return "Runtime Error"
	case CategoryHost:
		return "Interpreter Bug"
	default:
		return "Error"
	}
}
