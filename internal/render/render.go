// Package render prints a finished size report to a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"

	"ndksize/internal/sizes"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Renderer writes the decorated text report. It only reads the finished
// report; nothing here feeds back into the analysis.
type Renderer struct {
	Highlight bool // C++ syntax highlighting of demangled names
}

// Report writes the full statistics block for rep.
func (r Renderer) Report(w io.Writer, rep *sizes.Report) {
	fmt.Fprintln(w, green("Symbol sizes:"))
	fmt.Fprintln(w, green("============="))
	r.symbolList(w, rep.TopSymbols)
	fmt.Fprintln(w)
	fmt.Fprintln(w, green("============="))
	fmt.Fprintf(w, "%s %s\n", green("Total size of symbols:"), yellow(sizes.FormatBytes(rep.TotalSymbolSize)))
	fmt.Fprintf(w, "%s %s\n", green("Total size of strings:"), yellow(sizes.FormatBytes(rep.TotalStringSize)))
	fmt.Fprintf(w, "%s %s\n", green("Total size of constants:"), yellow(sizes.FormatBytes(rep.TotalConstantSize)))
	fmt.Fprintln(w, green("============="))
	fmt.Fprintf(w, "%s %s\n", green("Filesize:"), yellow(sizes.FormatBytes(rep.ApproxFileSize())))
	fmt.Fprintln(w, green("============="))
}

func (r Renderer) symbolList(w io.Writer, top []sizes.Symbol) {
	if len(top) == 0 {
		return
	}
	// The list is sorted descending, so the first entry sets the width of
	// the size column.
	width := len(strconv.FormatUint(top[0].Size, 10))
	for _, s := range top {
		fmt.Fprintf(w, "%s %s %s %s\n",
			green("**"),
			yellow(fmt.Sprintf("%-*d", width, s.Size)),
			green(":"),
			r.name(s.Name))
	}
}

func (r Renderer) name(s string) string {
	if !r.Highlight || s == "" {
		return s
	}
	var b strings.Builder
	if err := quick.Highlight(&b, s, "c++", "terminal256", "monokai"); err != nil {
		return s
	}
	return strings.TrimRight(b.String(), "\n")
}
