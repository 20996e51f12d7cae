package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hlop3z/autofk/internal/alerr"
)

// Context keys rendered in their own section rather than as details.
var sectionKeys = map[string]bool{
	"file": true, "line": true, "sql": true, "notes": true, "helps": true,
}

// FormatError formats an error for the terminal in rustc style:
//
//	error[E1004]: foreign_key must be a boolean, null, a table name or a mapping
//	  --> migrations/003_comments.yaml:7
//	  |
//	7 |       - {name: user_id, type: integer, foreign_key: 3}
//	  |         ^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^
//	help: ...
//
// Causes that are themselves *alerr.Error are rendered the same way under a
// "cause" label. Other errors are printed as a single line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ae *alerr.Error
	if !errors.As(err, &ae) {
		return Error("error") + ": " + err.Error() + "\n"
	}

	var b strings.Builder
	writeDiagnostic(&b, ae, Error("error"))
	return b.String()
}

func writeDiagnostic(b *strings.Builder, e *alerr.Error, label string) {
	ctx := e.GetContext()

	b.WriteString(label + "[" + Code(string(e.GetCode())) + "]: " + e.GetMessage() + "\n")

	file, _ := ctx["file"].(string)
	line, _ := ctx["line"].(int)
	if file != "" {
		loc := file
		if line > 0 {
			loc = fmt.Sprintf("%s:%d", file, line)
		}
		b.WriteString("  " + render(stylePipe, "-->") + " " + FilePath(loc) + "\n")
		if src, ok := sourceLine(file, line); ok {
			b.WriteString(renderSource(line, src, ""))
		}
	}

	if keys := detailKeys(ctx); len(keys) > 0 {
		b.WriteString("   " + Pipe() + "\n")
		for _, k := range keys {
			fmt.Fprintf(b, "   %s %s: %v\n", Pipe(), k, ctx[k])
		}
	}

	if sql, ok := ctx["sql"].(string); ok && sql != "" {
		b.WriteString("   " + Pipe() + "\n")
		for i, l := range strings.Split(sql, "\n") {
			prefix := "   = sql: "
			if i > 0 {
				prefix = "          "
			}
			b.WriteString(prefix + SQL(l) + "\n")
		}
	}

	for _, note := range e.Notes() {
		b.WriteString(Note("note") + ": " + note + "\n")
	}
	for _, help := range e.Helps() {
		b.WriteString(Help("help") + ": " + help + "\n")
	}

	cause := e.GetCause()
	if cause == nil {
		return
	}
	var next *alerr.Error
	if errors.As(cause, &next) {
		writeDiagnostic(b, next, Note("cause"))
		return
	}
	b.WriteString(Note("cause") + ": " + cause.Error() + "\n")
}

// detailKeys returns the context keys shown as details, sorted.
func detailKeys(ctx map[string]any) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !sectionKeys[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// FormatWarning formats a warning with optional help lines.
func FormatWarning(msg string, helps ...string) string {
	var b strings.Builder
	b.WriteString(Warning("warning") + ": " + msg + "\n")
	for _, help := range helps {
		b.WriteString(Help("help") + ": " + help + "\n")
	}
	return b.String()
}

// FormatNote formats a note.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
