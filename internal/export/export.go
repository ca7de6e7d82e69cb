// Package export renders publication plans as a Markdown calendar and as HTML.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
)

const dateLayout = "2006-01-02"

// Document is everything a rendered calendar shows. Diagnostics is optional.
type Document struct {
	Title        string
	Status       model.PlanStatus
	StartDate    time.Time
	HorizonWeeks int
	Items        []model.PlanItemDraft
	Diagnostics  *model.Diagnostics
}

// FromDetail builds a Document for a persisted plan.
func FromDetail(d model.PlanDetail) Document {
	diag := d.Plan.Diagnostics
	return Document{
		Title:        d.Plan.Name,
		Status:       d.Plan.Status,
		StartDate:    d.Plan.StartDate,
		HorizonWeeks: d.Plan.HorizonWeeks,
		Items:        d.Drafts(),
		Diagnostics:  &diag,
	}
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the plan grouped by ISO week, one table per week.
func Markdown(doc Document) string {
	var b strings.Builder

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = "Publication plan"
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeText(title))

	var meta []string
	if !doc.StartDate.IsZero() {
		meta = append(meta, "starts "+doc.StartDate.UTC().Format(dateLayout))
	}
	if doc.HorizonWeeks > 0 {
		meta = append(meta, fmt.Sprintf("%d weeks", doc.HorizonWeeks))
	}
	if doc.Status != "" {
		meta = append(meta, string(doc.Status))
	}
	meta = append(meta, fmt.Sprintf("%d items", len(doc.Items)))
	fmt.Fprintf(&b, "_%s_\n\n", strings.Join(meta, ", "))

	if len(doc.Items) == 0 {
		b.WriteString("No items scheduled.\n")
	}

	for _, week := range groupByWeek(doc.Items) {
		fmt.Fprintf(&b, "## Week of %s\n\n", week.monday.Format(dateLayout))
		b.WriteString("| Date | Channel | Title | Keyword | Cluster |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, it := range week.items {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				it.PublishDate.UTC().Format(dateLayout),
				it.Channel,
				cell(it.Title),
				cell(it.PrimaryKeyword),
				cell(it.ClusterLabel))
		}
		b.WriteString("\n")
	}

	if doc.Diagnostics != nil && len(doc.Diagnostics.ClusterStats) > 0 {
		writeClusters(&b, *doc.Diagnostics)
	}

	return b.String()
}

// HTML renders the Markdown calendar through goldmark.
func HTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}

func writeClusters(b *strings.Builder, diag model.Diagnostics) {
	b.WriteString("## Clusters\n\n")
	fmt.Fprintf(b, "_%d slots, %d items, %d dropped, %d collisions avoided_\n\n",
		diag.TotalSlots, diag.TotalItems, diag.DroppedSlots, diag.CollisionsAvoided)
	b.WriteString("| Cluster | Weight | Quota | Assigned | Rationale |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, st := range diag.ClusterStats {
		fmt.Fprintf(b, "| %s | %.2f | %d | %d | %s |\n",
			cell(st.Label), st.Weight, st.Quota, st.Assigned, cell(st.Rationale))
	}
	b.WriteString("\n")
}

type weekGroup struct {
	monday time.Time
	items  []model.PlanItemDraft
}

func groupByWeek(items []model.PlanItemDraft) []weekGroup {
	sorted := make([]model.PlanItemDraft, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishDate.Before(sorted[j].PublishDate)
	})

	var weeks []weekGroup
	for _, it := range sorted {
		monday := planning.MondayOf(it.PublishDate)
		if n := len(weeks); n > 0 && weeks[n-1].monday.Equal(monday) {
			weeks[n-1].items = append(weeks[n-1].items, it)
			continue
		}
		weeks = append(weeks, weekGroup{monday: monday, items: []model.PlanItemDraft{it}})
	}
	return weeks
}

func cell(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	return strings.ReplaceAll(escapeText(s), "|", `\|`)
}

var textEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
