package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"media-catalog/internal/model"
)

const minLastColumn = 16

type printer struct {
	w      io.Writer
	json   bool
	header bool
	// width is the terminal width, 0 when not writing to a terminal.
	width int
}

func newPrinter(cmd *cobra.Command, opts *rootOptions) *printer {
	p := &printer{w: cmd.OutOrStdout(), json: opts.json}
	if f, ok := p.w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.header = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = w
		}
	}
	return p
}

// JSON writes v as indented JSON.
func (p *printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes aligned columns. On a terminal the header is printed and the
// last column is cut to fit the width.
func (p *printer) Table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if p.header {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	limit := p.lastColumnLimit(headers, rows)
	for _, row := range rows {
		if limit > 0 && len(row) > 0 {
			last := len(row) - 1
			row = append([]string(nil), row...)
			row[last] = truncate(row[last], limit)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Linef writes one formatted line, or nothing in JSON mode.
func (p *printer) Linef(format string, args ...any) {
	if p.json {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) lastColumnLimit(headers []string, rows [][]string) int {
	if p.width == 0 || len(headers) == 0 {
		return 0
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}
	used := 0
	for _, w := range widths[:len(widths)-1] {
		used += w + 2
	}
	return max(p.width-used, minLastColumn)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-n+3:])
}

func itemRows(items []model.FileItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		tag := ""
		if it.HasTag {
			tag = "*"
		}
		rows = append(rows, []string{
			it.Kind.String(),
			sizeColumn(it),
			it.ModTime().Local().Format(time.DateTime),
			tag,
			it.Path,
		})
	}
	return rows
}

var itemHeaders = []string{"KIND", "SIZE", "MODIFIED", "TAG", "PATH"}

func sizeColumn(it model.FileItem) string {
	if it.IsFolder() {
		return strconv.FormatInt(it.Size, 10) + " entries"
	}
	return strconv.FormatInt(it.Size, 10)
}

func (p *printer) Items(items []model.FileItem) error {
	if p.json {
		if items == nil {
			items = []model.FileItem{}
		}
		return p.JSON(items)
	}
	return p.Table(itemHeaders, itemRows(items))
}
