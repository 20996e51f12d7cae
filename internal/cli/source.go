package cli

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// sourceLine returns line n (1-based) of file.
func sourceLine(file string, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	f, err := os.Open(file)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 1; scanner.Scan(); i++ {
		if i == n {
			return scanner.Text(), true
		}
	}
	return "", false
}

// renderSource renders one source line with a caret span under its text:
//
//	  |
//	3 |   - create_table: comments
//	  |     ^^^^^^^^^^^^^^^^^^^^^^^^
func renderSource(line int, source, label string) string {
	num := strconv.Itoa(line)
	pad := strings.Repeat(" ", len(num))

	var b strings.Builder
	b.WriteString(pad + " " + Pipe() + "\n")
	b.WriteString(LineNum(num) + " " + Pipe() + " " + source + "\n")

	text := strings.TrimLeft(source, " \t")
	if text == "" {
		return b.String()
	}
	// Sequence dashes are YAML syntax, not the offending text.
	if rest, ok := strings.CutPrefix(text, "- "); ok {
		text = rest
	}
	start := len(source) - len(text)
	text = strings.TrimRight(text, " \t")

	b.WriteString(pad + " " + Pipe() + " " + strings.Repeat(" ", start) + Pointer(strings.Repeat("^", len(text))))
	if label != "" {
		b.WriteString(" " + label)
	}
	b.WriteString("\n")
	return b.String()
}
