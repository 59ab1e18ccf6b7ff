// Package report renders a terminal, markdown or JSON summary of the result
// records a collect run left behind.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
)

const titleWidth = 25

type options struct {
	logger     *zap.Logger
	forceColor bool
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithForceColor emits ANSI colors even when w is not a terminal, as on CI
// runners whose log viewers render them.
func WithForceColor(force bool) Option { return func(o *options) { o.forceColor = force } }

// Generate summarizes the records in dir and writes them to w. A missing
// directory or corrupt record is logged and never an error.
func Generate(dir, format string, w io.Writer, opts ...Option) error {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	pages, err := Summarize(dir, o.logger)
	if errors.Is(err, fs.ErrNotExist) {
		o.logger.Warn("no results to summarize", zap.String("dir", dir))
		return nil
	}
	if err != nil {
		return err
	}

	switch format {
	case "markdown":
		return writeMarkdown(pages, w)
	case "json":
		return writeJSON(pages, w)
	case "table", "":
		r := lipgloss.NewRenderer(w)
		if o.forceColor {
			r.SetColorProfile(termenv.ANSI)
		}
		return writeTable(pages, w, newStyles(r))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

type styles struct {
	url   lipgloss.Style
	bands map[Band]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		url: r.NewStyle().Bold(true),
		bands: map[Band]lipgloss.Style{
			BandPass:    r.NewStyle().Foreground(lipgloss.Color("2")),
			BandAverage: r.NewStyle().Foreground(lipgloss.Color("3")),
			BandFail:    r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

func padTitle(title string) string {
	label := title + ":"
	if n := titleWidth - len([]rune(label)); n > 0 {
		label += strings.Repeat(" ", n)
	}
	return label
}

func writeTable(pages []PageSummary, w io.Writer, st styles) error {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(st.url.Render(p.URL) + "\n")
		for _, c := range p.Categories {
			color := st.bands[c.Band]
			fmt.Fprintf(&b, "\t%s %s %s\n", color.Render(c.Glyph), padTitle(c.Title), color.Render(formatScore(c.Score)))
			for _, m := range c.Metrics {
				mc := st.bands[m.Band]
				fmt.Fprintf(&b, "\t\t%s %s %s\n", mc.Render(metricGlyph(m.Score)), padTitle(m.Title), mc.Render(m.DisplayValue))
			}
			for _, g := range c.Groups {
				gc, glyph := st.bands[BandFail], "✘"
				if g.Pass {
					gc, glyph = st.bands[BandPass], "✔"
				}
				fmt.Fprintf(&b, "\t\t%s %s\n", gc.Render(glyph), gc.Render(g.Title))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdown(pages []PageSummary, w io.Writer) error {
	var b strings.Builder
	b.WriteString("## Lighthouse results\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "\n### %s\n\n", p.URL)
		b.WriteString("| Category | Score |\n|---|---|\n")
		for _, c := range p.Categories {
			fmt.Fprintf(&b, "| %s %s | %s |\n", c.Glyph, c.Title, formatScore(c.Score))
			for _, m := range c.Metrics {
				fmt.Fprintf(&b, "| &nbsp;&nbsp;%s %s | %s |\n", metricGlyph(m.Score), m.Title, m.DisplayValue)
			}
			for _, g := range c.Groups {
				mark := "✘"
				if g.Pass {
					mark = "✔"
				}
				fmt.Fprintf(&b, "| &nbsp;&nbsp;%s %s | |\n", mark, g.Title)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(pages []PageSummary, w io.Writer) error {
	if pages == nil {
		pages = []PageSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pages)
}
