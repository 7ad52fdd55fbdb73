package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/MikeSquared-Agency/Qualify/internal/report"
)

type printStyles struct {
	header      lipgloss.Style
	eligible    lipgloss.Style
	notEligible lipgloss.Style
	points      lipgloss.Style
	dim         lipgloss.Style
	warn        lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		eligible:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		notEligible: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		points:      lipgloss.NewStyle().Width(6).Align(lipgloss.Right),
		dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		warn:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func printResult(w io.Writer, out scoreOutput) error {
	styles := newPrintStyles()

	if out.Record != nil {
		if name := report.FullName(*out.Record); name != "" {
			fmt.Fprintln(w, styles.header.Render(name))
		}
	}

	verdict := styles.notEligible
	if out.Result.Eligible {
		verdict = styles.eligible
	}
	fmt.Fprintf(w, "%s %d\n", styles.header.Render("Total:"), out.Result.TotalPoints)
	fmt.Fprintln(w, verdict.Render(out.Result.EligibilityReason))
	fmt.Fprintln(w)

	if len(out.Result.Breakdown) == 0 {
		fmt.Fprintln(w, styles.dim.Render("no scored activities"))
	}
	for _, e := range out.Result.Breakdown {
		fmt.Fprintf(w, "%s  %s %s\n",
			styles.points.Render(fmt.Sprint(e.Points)),
			e.Label,
			styles.dim.Render(fmt.Sprintf("(%s x%d)", e.Key, e.UnitCount)),
		)
	}

	for _, n := range out.Notices {
		fmt.Fprintln(w, styles.warn.Render(fmt.Sprintf("%s: %d is above the form maximum of %d", n.Field, n.Value, n.Max)))
	}
	return nil
}
