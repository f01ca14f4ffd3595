// Package report renders import and extraction outcomes for the console.
//
// Nothing here decides anything: every function turns an already computed
// result into text, so the same result can be rendered, snapshotted and
// journaled without the three disagreeing.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrlokans/pocket-migrate/internal/entities"
	"github.com/mrlokans/pocket-migrate/internal/importers"
	"github.com/mrlokans/pocket-migrate/internal/pocket"
)

const (
	// MaxErrors is how many failure messages the results block lists.
	MaxErrors = 10
	// ExtractSamples is how many retained links the extraction summary shows.
	ExtractSamples = 5

	ruleWidth = 50
)

// Printer writes styled blocks to w. Styling degrades to plain text when w
// is not a terminal.
type Printer struct {
	w       io.Writer
	heading lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// Preview prints the sample conversions shown before the operator confirms.
func (p *Printer) Preview(preview importers.Preview) {
	p.line(p.heading.Render("🔍 Sample Data Preview:"))
	p.line(strings.Repeat("=", 80))
	for i, s := range preview.Samples {
		p.line("")
		p.line(fmt.Sprintf("Sample %d:", i+1))
		p.line(fmt.Sprintf("  Original: %s", Shorten(s.Source.Title, 50)))
		p.line(fmt.Sprintf("  URL: %s", Shorten(s.Source.URL, 60)))
		p.line(fmt.Sprintf("  Timestamp: %s → %s", s.Source.TimeAdded, s.Link.CreatedAt))
		p.line(fmt.Sprintf("  UUID: %s", s.Link.ID))
	}
	p.line("")
	p.line(p.heading.Render(fmt.Sprintf("📋 Ready to import %d links", preview.Total)))
	if preview.TimestampFallbacks > 0 {
		p.line(p.muted.Render(fmt.Sprintf("   %d links had no usable time_added and will use the current time", preview.TimestampFallbacks)))
	}
	p.line("⚠️  This will add these links to your database")
}

// Results prints the final counts, the batches that needed the individual
// fallback and the first MaxErrors failed links.
func (p *Printer) Results(result importers.Result) {
	if result.Cancelled {
		p.line(p.bad.Render("❌ Import cancelled"))
		return
	}

	p.line("")
	p.line(p.heading.Render("📊 Import Results:"))
	p.line(strings.Repeat("=", ruleWidth))
	p.line(p.good.Render(fmt.Sprintf("✅ Successfully imported: %d", result.Succeeded)))
	p.line(p.bad.Render(fmt.Sprintf("❌ Failed imports: %d", result.Failed)))
	p.line(fmt.Sprintf("📈 Success rate: %.1f%%", result.SuccessRate()))

	if n := len(result.BatchFailures); n > 0 {
		p.line("")
		p.line(p.heading.Render(fmt.Sprintf("🔄 %d of %d batches fell back to individual sends:", n, result.Batches)))
		for _, msg := range result.BatchFailures[:min(MaxErrors, n)] {
			p.line("  - " + msg)
		}
		if n > MaxErrors {
			p.line(fmt.Sprintf("  ... and %d more batches", n-MaxErrors))
		}
	}

	if len(result.Errors) > 0 {
		p.line("")
		p.line(p.heading.Render(fmt.Sprintf("⚠️  Error Summary (%d errors):", len(result.Errors))))
		shown, rest := result.ErrorSummary(MaxErrors)
		for _, msg := range shown {
			p.line("  - " + msg)
		}
		if rest > 0 {
			p.line(fmt.Sprintf("  ... and %d more errors", rest))
		}
	}

	if result.Succeeded > 0 {
		p.line("")
		p.line(p.good.Render(fmt.Sprintf("🎉 Import completed! %d links added", result.Succeeded)))
	}
}

// Aborted prints why a run stopped before sending anything.
func (p *Printer) Aborted(err error) {
	switch {
	case errors.Is(err, importers.ErrConnectionUnavailable):
		p.line(p.bad.Render("❌ Cannot proceed without database connection"))
	case errors.Is(err, importers.ErrLoadFailure):
		p.line(p.bad.Render("❌ No links to import"))
	}
	p.line(p.muted.Render(err.Error()))
}

// Extraction prints the per-file counts, the total and a few retained links.
func (p *Printer) Extraction(result pocket.ExtractResult, output string) {
	for _, f := range result.Files {
		switch {
		case errors.Is(f.Err, os.ErrNotExist):
			p.line(p.muted.Render(fmt.Sprintf("Warning: %s not found, skipping...", f.Path)))
		case f.Err != nil:
			p.line(p.bad.Render(fmt.Sprintf("Error processing %s: %v", f.Path, f.Err)))
		default:
			p.line(fmt.Sprintf("  Found %d unread links in %s", f.Retained, f.Path))
			if f.Skipped > 0 {
				p.line(p.muted.Render(fmt.Sprintf("  Skipped %d malformed rows", f.Skipped)))
			}
		}
	}
	p.line(strings.Repeat("=", ruleWidth))
	p.line(p.heading.Render(fmt.Sprintf("Total unread links found: %d", result.Total())))

	if result.Total() == 0 {
		p.line(p.bad.Render("❌ No unread links found!"))
		return
	}

	p.line(p.good.Render(fmt.Sprintf("✅ Unread links saved to: %s", output)))
	p.line("")
	p.line("Sample unread links:")
	p.line(strings.Repeat("-", ruleWidth))
	for i, link := range result.Links[:min(ExtractSamples, len(result.Links))] {
		p.sample(i+1, link)
	}
}

func (p *Printer) sample(n int, link entities.PocketLink) {
	added := "Invalid timestamp"
	if iso, fallback := importers.UnixToISO(link.TimeAdded, time.Now()); !fallback {
		added = iso
	}
	p.line(fmt.Sprintf("%d. %s", n, Shorten(link.Title, 60)))
	p.line(fmt.Sprintf("   URL: %s", Shorten(link.URL, 80)))
	p.line(fmt.Sprintf("   Added: %s", added))
	p.line("")
}

func (p *Printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

// Shorten cuts s to at most n runes, marking the cut with "...".
func Shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
