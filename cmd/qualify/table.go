package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

func newTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the effective point table and thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.cfg.Engine()
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), engine)
			return nil
		},
	}
}

func printTable(w io.Writer, engine *scoring.Engine) {
	styles := newPrintStyles()
	table := engine.Table()
	lang := engine.Language()

	th := engine.Thresholds()
	fmt.Fprintln(w, styles.header.Render("Thresholds"))
	fmt.Fprintf(w, "  min teaching years: %d\n", th.MinTeachingYears)
	fmt.Fprintf(w, "  min total points:   %d\n\n", th.MinTotalPoints)

	fmt.Fprintln(w, styles.header.Render("Activities"))
	for _, act := range scoring.Activities() {
		printRule(w, styles, act.Key(), scoring.ActivityLabel(lang, act), table.Activity(act))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.header.Render("Publications"))
	for _, tier := range scoring.Tiers() {
		printRule(w, styles, scoring.RuleKey(tier), scoring.TierLabel(lang, tier), table.Tier(tier))
	}
}

func printRule(w io.Writer, styles printStyles, key, label string, rule scoring.PointRule) {
	limit := "uncapped"
	if rule.Cap != nil {
		limit = "cap " + strconv.FormatFloat(*rule.Cap, 'f', -1, 64)
	}
	fmt.Fprintf(w, "%s  %-26s %s %s\n",
		styles.points.Render(strconv.FormatFloat(rule.PointsPerUnit, 'f', -1, 64)),
		key,
		label,
		styles.dim.Render("("+limit+")"),
	)
}
