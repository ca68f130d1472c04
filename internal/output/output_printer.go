// Package output prints command progress and summaries to the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/fatih/color"
)

const headerSeparatorLength = 48

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)

	ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// Printer writes results to Out and progress messages to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter disables colors when stdout is not a terminal or NO_COLOR is set.
func NewPrinter(out, err io.Writer) *Printer {
	if os.Getenv("NO_COLOR") != "" || !lib.IsTerminal(out) {
		color.NoColor = true
	}
	return &Printer{Out: out, Err: err}
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiRegexp.ReplaceAllString(s, ""))
}

func (p *Printer) Successf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.Err, green.Sprint("✓")+" "+format+"\n", a...)
}

func (p *Printer) Infof(format string, a ...any) {
	_, _ = fmt.Fprintf(p.Err, cyan.Sprint("→")+" "+format+"\n", a...)
}

func (p *Printer) Warningf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.Err, yellow.Sprint("⚠")+" "+format+"\n", a...)
}

func (p *Printer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.Err, red.Sprint("✗")+" "+format+"\n", a...)
}

// Step prints a step in a multi-step process, e.g. "[3/9] Copying stubs".
func (p *Printer) Step(step, total int, message string) {
	_, _ = gray.Fprintf(p.Err, "[%d/%d] ", step, total)
	_, _ = fmt.Fprintln(p.Err, message)
}

func (p *Printer) Header(text string) {
	_, _ = fmt.Fprintln(p.Out)
	_, _ = fmt.Fprintln(p.Out, bold.Sprint(text))
	_, _ = fmt.Fprintln(p.Out, gray.Sprint(strings.Repeat("━", headerSeparatorLength)))
}

func (p *Printer) Blank() {
	_, _ = fmt.Fprintln(p.Out)
}

func (p *Printer) Println(a ...any) {
	_, _ = fmt.Fprintln(p.Out, a...)
}

func (p *Printer) List(items []string) {
	for _, item := range items {
		_, _ = fmt.Fprintf(p.Out, "  %s %s\n", cyan.Sprint("•"), item)
	}
}

func (p *Printer) NumberedList(items []string) {
	for i, item := range items {
		_, _ = fmt.Fprintf(p.Out, "  %s %s\n", gray.Sprintf("%d.", i+1), item)
	}
}

// Table prints rows under bold headers with columns padded to the widest cell.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], visibleWidth(cell))
			}
		}
	}

	var line strings.Builder
	for i, h := range headers {
		line.WriteString(bold.Sprint(h))
		line.WriteString(strings.Repeat(" ", widths[i]-visibleWidth(h)))
		line.WriteString("  ")
	}
	_, _ = fmt.Fprintln(p.Out, strings.TrimRight(line.String(), " "))

	line.Reset()
	for i := range headers {
		line.WriteString(gray.Sprint(strings.Repeat("─", widths[i])))
		line.WriteString("  ")
	}
	_, _ = fmt.Fprintln(p.Out, strings.TrimRight(line.String(), " "))

	for _, row := range rows {
		line.Reset()
		for i, cell := range row {
			if i >= len(widths) {
				continue
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-visibleWidth(cell)))
			line.WriteString("  ")
		}
		_, _ = fmt.Fprintln(p.Out, strings.TrimRight(line.String(), " "))
	}
}

// YesNo renders a feature flag for summary tables.
func YesNo(enabled bool) string {
	if enabled {
		return green.Sprint("Yes")
	}
	return gray.Sprint("No")
}
