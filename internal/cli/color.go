package cli

import "github.com/charmbracelet/lipgloss"

// ANSI 256 colors, rustc's scheme.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

	styleCode     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleLineNum  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePipe     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePointer  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleFilePath = lipgloss.NewStyle().Bold(true)
	styleSQL      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBold     = lipgloss.NewStyle().Bold(true)
)

// render applies style when colors are enabled.
func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error styles an error label.
func Error(s string) string { return render(styleError, s) }

// Warning styles a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note styles a note label.
func Note(s string) string { return render(styleNote, s) }

// Help styles a help label.
func Help(s string) string { return render(styleHelp, s) }

// Success styles a success label.
func Success(s string) string { return render(styleSuccess, s) }

// Code styles an error code such as E3001.
func Code(s string) string { return render(styleCode, s) }

// LineNum styles a source line number.
func LineNum(s string) string { return render(styleLineNum, s) }

// Pipe returns the gutter pipe.
func Pipe() string { return render(stylePipe, "|") }

// Pointer styles the caret under a source span.
func Pointer(s string) string { return render(stylePointer, s) }

// FilePath styles a file location.
func FilePath(s string) string { return render(styleFilePath, s) }

// SQL styles a SQL statement.
func SQL(s string) string { return render(styleSQL, s) }

// Dim styles secondary text.
func Dim(s string) string { return render(styleDim, s) }

// Bold styles emphasized text.
func Bold(s string) string { return render(styleBold, s) }
