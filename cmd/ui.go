package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/digitalhand/testenv-cli/internal/credentials"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
)

// stdout receives all user-facing status output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

func colorize(color, text string) string {
	if !useColor() {
		return text
	}
	return color + text + ansiReset
}

func styleText(style, text string) string {
	if !useColor() {
		return text
	}
	return style + text + ansiReset
}

func markSuccess() string {
	return colorize(ansiGreen, "✓")
}

func markFailure() string {
	return colorize(ansiRed, "✗")
}

func markWarning() string {
	return colorize(ansiYellow, "!")
}

func markInfo() string {
	return colorize(ansiCyan, "•")
}

func headerText(text string) string {
	return styleText(ansiBold+ansiCyan, text)
}

func dimText(text string) string {
	return styleText(ansiDim, text)
}

func printStatus(mark, name, detail string) {
	fmt.Fprintf(stdout, "%s %-34s %s\n", mark, name, detail)
}

// printVarStatus reports one variable using presence semantics: set-but-empty
// is a warning, unset is a failure. Secret values are redacted.
func printVarStatus(name, value string, ok bool) {
	switch {
	case !ok:
		printStatus(markFailure(), name, "not set")
	case value == "":
		printStatus(markWarning(), name, "set (empty)")
	default:
		printStatus(markSuccess(), name, credentials.Redact(name, value))
	}
}

func printHeader(title string) {
	fmt.Fprintln(stdout, headerText(title))
	fmt.Fprintln(stdout, dimText(strings.Repeat("─", len(title))))
}

func printSummaryBox(passed, warned, failed int) {
	total := passed + warned + failed
	parts := []string{
		colorize(ansiGreen, fmt.Sprintf("%d passed", passed)),
	}
	if warned > 0 {
		parts = append(parts, colorize(ansiYellow, fmt.Sprintf("%d warned", warned)))
	}
	if failed > 0 {
		parts = append(parts, colorize(ansiRed, fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(stdout, "\n%s  %s\n", dimText(fmt.Sprintf("[%d checks]", total)), strings.Join(parts, dimText(", ")))
}

func printNext(lines ...string) {
	fmt.Fprintln(stdout, "next:")
	for _, l := range lines {
		fmt.Fprintf(stdout, "  %s\n", l)
	}
}

// helpGroup defines a visual grouping for cobra help output.
type helpGroup struct {
	title    string
	commands []helpEntry
}

type helpEntry struct {
	name string
	desc string
}

func printGroupedHelp(groups []helpGroup) {
	for _, g := range groups {
		fmt.Fprintf(stdout, "\n%s\n", headerText(g.title))
		for _, e := range g.commands {
			fmt.Fprintf(stdout, "  %-24s %s\n", e.name, dimText(e.desc))
		}
	}
	fmt.Fprintln(stdout)
}
