// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAttendee outputs a human-readable summary of one attendee profile.
func (p *Printer) PrintAttendee(a *types.Attendee) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", a.Name))
	sb.WriteString(fmt.Sprintf("Org:      %s\n", a.Organization))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", a.Role))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", a.Industry))
	if a.City != "" {
		sb.WriteString(fmt.Sprintf("City:     %s\n", a.City))
	}
	if a.Needs != "" {
		sb.WriteString(fmt.Sprintf("Needs:    %s\n", a.Needs))
	}
	if a.Assets != "" {
		sb.WriteString(fmt.Sprintf("Assets:   %s\n", a.Assets))
	}

	p.printBox("ATTENDEE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBreakdown outputs a score breakdown with per-category detail.
func (p *Printer) PrintBreakdown(name string, b *types.ScoreBreakdown) {
	if b == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d/100 (%s)\n\n", b.Total, b.Grade))
	for _, c := range b.Categories {
		sb.WriteString(fmt.Sprintf("%-28s %3d/%d\n", c.Label, c.Points, c.MaxPoints))
		if c.Justification != "" {
			just := c.Justification
			if len(just) > 46 {
				just = just[:43] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", just))
		}
	}

	title := "SCORE BREAKDOWN"
	if name != "" {
		title = fmt.Sprintf("SCORE: %s", name)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs a tier's match records in rank order.
func (p *Printer) PrintMatches(tier types.Tier, matches []*types.MatchRecord) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tier: %s, matches: %d\n\n", tier, len(matches)))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		grade := ""
		if m.Breakdown != nil {
			grade = " (" + m.Breakdown.Grade + ")"
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, m.CandidateID))
		sb.WriteString(fmt.Sprintf("    Score: %d%s\n", m.Score, grade))
		if m.Rationale.Strategic != "" {
			rationale := m.Rationale.Strategic
			if len(rationale) > 42 {
				rationale = rationale[:39] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Why: %s\n", rationale))
		}
	}
	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(matches)-maxItemsToShow))
	}

	p.printBox("MATCH SHORTLIST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRationale outputs the three-part meeting rationale for one pair.
func (p *Printer) PrintRationale(r types.Rationale) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategic: %s\n\n", r.Strategic))
	sb.WriteString(fmt.Sprintf("Angle:     %s\n\n", r.CollaborationAngle))
	sb.WriteString(fmt.Sprintf("Opener:    %s", r.ConversationOpener))

	p.printBox("MEETING RATIONALE", sb.String())
}
