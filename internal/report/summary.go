package report

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/signalnine/lhci-action/internal/result"
)

type Band int

const (
	BandFail Band = iota
	BandAverage
	BandPass
)

func (b Band) String() string {
	switch b {
	case BandPass:
		return "pass"
	case BandAverage:
		return "average"
	default:
		return "fail"
	}
}

func (b Band) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// BandFor maps a score to its color band. Thresholds are inclusive; a
// missing score is a failure.
func BandFor(score *float64) Band {
	switch {
	case score == nil:
		return BandFail
	case *score >= 0.9:
		return BandPass
	case *score >= 0.5:
		return BandAverage
	default:
		return BandFail
	}
}

// Glyph is the severity marker printed before a category title.
func Glyph(score *float64) string {
	switch {
	case score == nil:
		return "◔"
	case *score == 1:
		return "●"
	case *score >= 0.75:
		return "◕"
	case *score >= 0.5:
		return "◗"
	default:
		return "◔"
	}
}

func metricGlyph(score *float64) string {
	if BandFor(score) == BandPass {
		return "✔"
	}
	return "✘"
}

func formatScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return strconv.Itoa(int(math.Round(*score * 100)))
}

const (
	performanceCategory = "performance"
	pwaCategory         = "pwa"
)

var performanceMetrics = []string{
	"first-contentful-paint",
	"first-meaningful-paint",
	"speed-index",
	"first-cpu-idle",
	"interactive",
	"max-potential-fid",
	"total-blocking-time",
}

var pwaGroups = []struct{ id, title string }{
	{"pwa-fast-reliable", "Fast and reliable"},
	{"pwa-installable", "Installable"},
	{"pwa-optimized", "PWA Optimized"},
}

type PageSummary struct {
	URL        string            `json:"url"`
	Categories []CategorySummary `json:"categories"`
}

type CategorySummary struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Score   *float64        `json:"score"`
	Glyph   string          `json:"glyph"`
	Band    Band            `json:"band"`
	Metrics []MetricSummary `json:"metrics,omitempty"`
	Groups  []GroupSummary  `json:"groups,omitempty"`
}

type MetricSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Score        *float64 `json:"score"`
	DisplayValue string   `json:"display_value"`
	Band         Band     `json:"band"`
}

type GroupSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Pass  bool   `json:"pass"`
}

// Summarize reads every result record in dir. Records repeating an already
// seen finalUrl are skipped, as are files that cannot be parsed.
func Summarize(dir string, logger *zap.Logger) ([]PageSummary, error) {
	paths, err := result.ListLHRFiles(dir)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var pages []PageSummary
	for _, path := range paths {
		lhr, err := result.ReadLHR(path)
		if err != nil {
			logger.Warn("skipping unreadable result", zap.String("path", path), zap.Error(err))
			continue
		}
		if seen[lhr.FinalURL] {
			continue
		}
		seen[lhr.FinalURL] = true
		pages = append(pages, summarizePage(lhr))
	}
	return pages, nil
}

func summarizePage(lhr *result.LHR) PageSummary {
	page := PageSummary{URL: lhr.FinalURL}
	for _, c := range lhr.OrderedCategories() {
		cs := CategorySummary{
			ID:    c.ID,
			Title: c.Title,
			Score: c.Score,
			Glyph: Glyph(c.Score),
			Band:  BandFor(c.Score),
		}
		switch c.ID {
		case performanceCategory:
			cs.Metrics = summarizeMetrics(lhr.Audits)
		case pwaCategory:
			cs.Groups = summarizeGroups(c, lhr.Audits)
		}
		page.Categories = append(page.Categories, cs)
	}
	return page
}

func summarizeMetrics(audits map[string]result.Audit) []MetricSummary {
	var out []MetricSummary
	for _, id := range performanceMetrics {
		a, ok := audits[id]
		if !ok {
			continue
		}
		out = append(out, MetricSummary{
			ID:           id,
			Title:        a.Title,
			Score:        a.Score,
			DisplayValue: a.DisplayValue,
			Band:         BandFor(a.Score),
		})
	}
	return out
}

// summarizeGroups passes a group only when every scored audit in it is a
// perfect 1. Manual and not-applicable audits carry no score and are ignored.
func summarizeGroups(c result.Category, audits map[string]result.Audit) []GroupSummary {
	var out []GroupSummary
	for _, g := range pwaGroups {
		members, pass := 0, true
		for _, ref := range c.AuditRefs {
			if ref.Group != g.id {
				continue
			}
			members++
			if a, ok := audits[ref.ID]; ok && a.Score != nil && *a.Score != 1 {
				pass = false
			}
		}
		if members > 0 {
			out = append(out, GroupSummary{ID: g.id, Title: g.title, Pass: pass})
		}
	}
	return out
}
