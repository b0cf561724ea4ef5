package report

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dshills/crucible/internal/validate"
)

// Status is the verdict bucket of a finding.
type Status string

const (
	Confirmed Status = "CONFIRMED"
	Dismissed Status = "DISMISSED"
	Contested Status = "CONTESTED"
)

// TopN caps the executive summary.
const TopN = 5

// CritiqueFinding is a finding as stated by the attacker.
type CritiqueFinding struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence"`
	Location   string `json:"location"`
}

// VerdictItem is one finding as ruled by the judge. Severity and FixPriority
// are only set for confirmed findings.
type VerdictItem struct {
	ID          string `json:"id"`
	Severity    string `json:"severity,omitempty"`
	FixPriority string `json:"fixPriority,omitempty"`
	Status      Status `json:"status"`
}

// Meta identifies the run a report belongs to.
type Meta struct {
	ReviewType string    `json:"reviewType"`
	RepoLabel  string    `json:"repo"`
	Head       string    `json:"head"`
	Scope      string    `json:"scope"`
	Date       time.Time `json:"date"`
	RunID      string    `json:"runId,omitempty"`
}

// Entry joins a verdict item with its critique title and location.
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	Severity    string `json:"severity,omitempty"`
	FixPriority string `json:"fixPriority,omitempty"`
}

// Counts holds the size of each verdict bucket.
type Counts struct {
	Confirmed int `json:"confirmed"`
	Dismissed int `json:"dismissed"`
	Contested int `json:"contested"`
}

// Report is the synthesized outcome of a review.
type Report struct {
	Tool string `json:"tool"`
	Meta
	Counts Counts `json:"counts"`
	// Top is the first TopN confirmed findings by fix priority.
	Top       []Entry `json:"top"`
	Confirmed []Entry `json:"confirmed"`
	Dismissed []Entry `json:"dismissed"`
	Contested []Entry `json:"contested"`
}

// HasConfirmed reports whether the judge confirmed any finding.
func (r *Report) HasConfirmed() bool { return len(r.Confirmed) > 0 }

// ParseCritique indexes critique findings by ID. Lines that are not strict
// finding headers do not start a finding.
func ParseCritique(text string) map[string]CritiqueFinding {
	findings := map[string]CritiqueFinding{}
	var cur *CritiqueFinding
	flush := func() {
		if cur != nil {
			findings[cur.ID] = *cur
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if h, ok := validate.MatchFindingHeader(line); ok {
			flush()
			cur = &CritiqueFinding{ID: h.ID, Title: h.Title, Severity: h.Severity, Confidence: h.Confidence}
			continue
		}
		if cur != nil && strings.HasPrefix(line, "- Location:") {
			cur.Location = strings.TrimSpace(strings.TrimPrefix(line, "- Location:"))
		}
	}
	flush()
	return findings
}

var confirmedHeader = regexp.MustCompile(`^([A-Z0-9]+-\d{2})\s+\((CRITICAL|HIGH|MEDIUM|LOW)\)\s*$`)

// ParseVerdict lists verdict items in document order.
func ParseVerdict(text string) []VerdictItem {
	var (
		items  []VerdictItem
		status Status
		cur    *VerdictItem
	)
	flush := func() {
		if cur != nil {
			items = append(items, *cur)
			cur = nil
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if b, ok := validate.MatchBucketHeading(line); ok {
			status = Status(b)
			continue
		}
		if strings.HasPrefix(line, "### ") && status != "" {
			flush()
			header := strings.TrimSpace(line[4:])
			fields := strings.Fields(header)
			if len(fields) == 0 {
				continue
			}
			cur = &VerdictItem{ID: fields[0], Status: status}
			if status == Confirmed {
				if m := confirmedHeader.FindStringSubmatch(header); m != nil {
					cur.ID, cur.Severity = m[1], m[2]
				}
			}
			continue
		}
		if cur != nil && status == Confirmed && strings.HasPrefix(line, "- Fix priority:") {
			cur.FixPriority = strings.TrimSpace(strings.TrimPrefix(line, "- Fix priority:"))
		}
	}
	flush()
	return items
}

func priorityRank(p string) int {
	switch strings.ToUpper(p) {
	case "P0":
		return 0
	case "P1":
		return 1
	case "P2":
		return 2
	default:
		return 3
	}
}

// Build joins the critique and verdict into a Report. Confirmed findings are
// ordered P0, P1, P2, then anything else, ties broken by ID.
func Build(meta Meta, critique, verdict string) *Report {
	findings := ParseCritique(critique)
	r := &Report{
		Tool:      "crucible",
		Meta:      meta,
		Top:       []Entry{},
		Confirmed: []Entry{},
		Dismissed: []Entry{},
		Contested: []Entry{},
	}
	for _, v := range ParseVerdict(verdict) {
		f := findings[v.ID]
		e := Entry{ID: v.ID, Title: f.Title, Location: f.Location}
		switch v.Status {
		case Confirmed:
			e.Severity, e.FixPriority = v.Severity, v.FixPriority
			r.Confirmed = append(r.Confirmed, e)
		case Dismissed:
			r.Dismissed = append(r.Dismissed, e)
		case Contested:
			r.Contested = append(r.Contested, e)
		}
	}
	sort.SliceStable(r.Confirmed, func(i, j int) bool {
		pi, pj := priorityRank(r.Confirmed[i].FixPriority), priorityRank(r.Confirmed[j].FixPriority)
		if pi != pj {
			return pi < pj
		}
		return r.Confirmed[i].ID < r.Confirmed[j].ID
	})
	r.Top = r.Confirmed
	if len(r.Top) > TopN {
		r.Top = r.Top[:TopN]
	}
	r.Counts = Counts{Confirmed: len(r.Confirmed), Dismissed: len(r.Dismissed), Contested: len(r.Contested)}
	return r
}
