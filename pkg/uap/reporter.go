package uap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gookit/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/savioxavier/termlink"
	"github.com/xlab/treeprint"
	"golang.org/x/term"
)

// Reporter prints conversion summaries (tables, trees, json)
type Reporter struct {
	w        io.Writer
	useColor bool
	useLinks bool
	colors   TableColors
}

// TableColors defines the color styles used in the reporter
type TableColors struct {
	Category color.Style
	Count    color.Style
	Empty    color.Style
	Path     color.Style
}

// NewReporter creates a new Reporter writing to w. Colors and hyperlinks are
// only used when w is a terminal; pass "no-colors" or "no-links" to turn
// them off regardless.
func NewReporter(w io.Writer, args ...string) *Reporter {
	flags := map[string]bool{}
	for _, arg := range args {
		flags[arg] = true
	}

	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	return &Reporter{
		w:        w,
		useColor: (color.SupportColor() && isTTY) && !flags["no-colors"],
		useLinks: (termlink.SupportsHyperlinks() && isTTY) && !flags["no-links"],
		colors: TableColors{
			Category: color.New(color.FgCyan),
			Count:    color.New(color.FgGreen, color.OpBold),
			Empty:    color.New(color.FgYellow, color.OpBold),
			Path:     color.New(color.FgDefault),
		},
	}
}

func (r *Reporter) linkPath(path string) string {
	if !r.useLinks {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return termlink.Link(path, "file://"+filepath.ToSlash(abs))
}

func (r *Reporter) colorize(o *Output) (string, string, string) {
	cat, count, path := string(o.Category), strconv.Itoa(o.Rules), r.linkPath(o.Path)
	if !r.useColor {
		return cat, count, path
	}

	// an empty category is legal but usually means the wrong input file.
	if o.Rules == 0 {
		return r.colors.Category.Render(cat), r.colors.Empty.Render(count), r.colors.Path.Render(path)
	}
	return r.colors.Category.Render(cat), r.colors.Count.Render(count), r.colors.Path.Render(path)
}

// Table prints one row per written document.
func (r *Reporter) Table(res *Result) {
	t := table.NewWriter()
	t.SetStyle(table.Style{
		Box: table.BoxStyle{
			PaddingLeft:      " ",
			PaddingRight:     " ",
			UnfinishedRow:    " ",
			TopSeparator:     "─",
			MiddleHorizontal: "─",
		},
		Format: table.FormatOptions{
			Row: text.FormatDefault,
		}, Options: table.Options{
			DrawBorder:      false,
			SeparateColumns: true,
			SeparateFooter:  false,
			SeparateHeader:  true,
			SeparateRows:    false,
		},
	})
	t.SetOutputMirror(r.w)
	t.AppendHeader(table.Row{"Category", "Rules", "Output"})
	t.AppendSeparator()

	for _, o := range res.GetOutputs() {
		cat, count, path := r.colorize(o)
		t.AppendRow(table.Row{cat, count, path})
	}

	fmt.Fprintf(r.w, "\n%s (%d rules)\n", r.linkPath(res.Input), res.GetRules())
	t.Render()
}

// Tree prints the input with the written documents hanging off it.
func (r *Reporter) Tree(res *Result) {
	tree := treeprint.New()
	tree.SetValue(r.linkPath(res.Input))

	for _, o := range res.GetOutputs() {
		cat, count, path := r.colorize(o)
		tree.AddBranch(fmt.Sprintf("%s (%s %s rules)", path, count, cat))
	}

	fmt.Fprintln(r.w, tree.String())
}

// JSON writes the result as a single line of JSON.
func (r *Reporter) JSON(res *Result) error {
	j, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("error marshalling result to JSON: %w", err)
	}

	_, err = fmt.Fprintf(r.w, "%s\n", j)
	return err
}
