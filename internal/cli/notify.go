package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// consoleNotifier prints successes to stdout and failures to stderr
type consoleNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func newConsoleNotifier(out, errOut io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out, errOut: errOut}
}

func (n *consoleNotifier) Success(msg string) {
	fmt.Fprintf(n.out, "✅ %s\n", msg)
}

func (n *consoleNotifier) Error(msg string) {
	fmt.Fprintf(n.errOut, "❌ %s\n", msg)
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// truncate shortens s to maxLen runes, ending with "..."
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
