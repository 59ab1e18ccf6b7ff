package result

import "sort"

// LHR is the subset of a Lighthouse result record the summary reads.
type LHR struct {
	FinalURL     string              `json:"finalUrl"`
	RequestedURL string              `json:"requestedUrl,omitempty"`
	FetchTime    string              `json:"fetchTime,omitempty"`
	Categories   map[string]Category `json:"categories"`
	Audits       map[string]Audit    `json:"audits"`
}

type Category struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Score     *float64   `json:"score"`
	AuditRefs []AuditRef `json:"auditRefs,omitempty"`
}

type AuditRef struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
	Group  string  `json:"group,omitempty"`
}

// Audit scores are nil for manual and not-applicable audits.
type Audit struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Score            *float64 `json:"score"`
	DisplayValue     string   `json:"displayValue,omitempty"`
	ScoreDisplayMode string   `json:"scoreDisplayMode,omitempty"`
}

// categoryOrder is the order Lighthouse itself reports categories in.
var categoryOrder = []string{"performance", "accessibility", "best-practices", "seo", "pwa"}

// OrderedCategories returns the categories in report order, followed by any
// unknown ones sorted by id. Each category's ID is set from its key.
func (l *LHR) OrderedCategories() []Category {
	seen := map[string]bool{}
	var out []Category
	add := func(id string) {
		c, ok := l.Categories[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		c.ID = id
		out = append(out, c)
	}
	for _, id := range categoryOrder {
		add(id)
	}
	var rest []string
	for id := range l.Categories {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		add(id)
	}
	return out
}
