package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"notion-importer/internal/diagnostic"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// printDiagnostics writes every diagnostic on its own line, most severe first.
func printDiagnostics(w io.Writer, d diagnostic.Diagnostics) {
	for _, diag := range d.All() {
		label := diag.Severity.String()

		switch diag.Severity {
		case diagnostic.SeverityError:
			label = errorColor.Sprint(label)
		case diagnostic.SeverityWarning:
			label = warningColor.Sprint(label)
		default:
			label = infoColor.Sprint(label)
		}

		fmt.Fprintf(w, "  %s %s\n", label, diag)
	}
}
