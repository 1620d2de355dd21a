package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/output"
	"github.com/critflow/studio/internal/studio"
	"github.com/critflow/studio/internal/validate"
)

var (
	verdictRating    int
	verdictSummary   string
	verdictTakeaways string
	verdictReadiness string
	verdictTLDR      string
	verdictFollowUp  string
)

var verdictCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Manage the review verdict",
	Long: `The verdict is the review's bottom line: an overall rating, a summary,
and the three takeaways the creator should act on first. Submission is
blocked until the verdict is complete.`,
}

var verdictSetCmd = &cobra.Command{
	Use:   "set <slot-id>",
	Short: "Set verdict fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return verdictSetRun(args[0])
	},
}

var verdictShowCmd = &cobra.Command{
	Use:   "show <slot-id>",
	Short: "Show the current verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return verdictShowRun(args[0])
	},
}

func init() {
	verdictSetCmd.Flags().IntVar(&verdictRating, "rating", 0, "Overall rating, 1-5")
	verdictSetCmd.Flags().StringVar(&verdictSummary, "summary", "", "Overall assessment, 50-300 characters")
	verdictSetCmd.Flags().StringVar(&verdictTakeaways, "takeaways", "", `JSON array of up to 3 {"issue","fix"} objects`)
	verdictSetCmd.Flags().StringVar(&verdictReadiness, "readiness", "", "Overall readiness: ready, almost-ready, needs-work, not-ready")
	verdictSetCmd.Flags().StringVar(&verdictTLDR, "tldr", "", "Executive summary TLDR")
	verdictSetCmd.Flags().StringVar(&verdictFollowUp, "follow-up", "", "Follow-up offer text")

	verdictCmd.AddCommand(verdictSetCmd)
	verdictCmd.AddCommand(verdictShowCmd)
	rootCmd.AddCommand(verdictCmd)
}

func verdictSetRun(slotRef string) error {
	patch := studio.VerdictPatch{}
	if verdictRating != 0 {
		patch.Rating = &verdictRating
	}
	if verdictSummary != "" {
		patch.Summary = &verdictSummary
	}
	if verdictTakeaways != "" {
		var takeaways []models.Takeaway
		if err := json.Unmarshal([]byte(verdictTakeaways), &takeaways); err != nil {
			return fmt.Errorf("invalid takeaways JSON: %w", err)
		}
		patch.TopTakeaways = takeaways
	}
	if verdictReadiness != "" || verdictTLDR != "" {
		patch.ExecutiveSummary = &models.ExecutiveSummary{
			TLDR:             verdictTLDR,
			OverallReadiness: models.Readiness(verdictReadiness),
		}
	}
	if verdictFollowUp != "" {
		patch.FollowUpOffer = &verdictFollowUp
	}

	if patch.Rating == nil && patch.Summary == nil && patch.TopTakeaways == nil &&
		patch.ExecutiveSummary == nil && patch.FollowUpOffer == nil {
		return fmt.Errorf("no verdict fields specified (use --rating, --summary, --takeaways, ...)")
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		if dryRun {
			ui.DryRunMsg("Would update verdict on %s", slotRef)
			return nil
		}

		st := sess.Dispatch(studio.UpdateVerdict{Patch: patch})
		if st.Verdict.Complete() {
			ui.Success("Verdict updated (complete)")
		} else {
			result := validate.Verdict(st.Verdict)
			ui.Success("Verdict updated")
			for _, e := range result.Errors {
				ui.Warning("still needed: %s", e)
			}
		}
		return nil
	})
}

func verdictShowRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()
		v := st.Verdict
		if v == nil {
			ui.Info("No verdict yet. Use 'studio verdict set'.")
			return nil
		}

		stars := strings.Repeat("*", v.Rating) + strings.Repeat(".", 5-v.Rating)
		fmt.Fprintf(ui.Out, "Rating:    %s (%d/5)\n", output.Yellow(stars), v.Rating)
		if v.Summary != "" {
			fmt.Fprintf(ui.Out, "Summary:   %s\n", v.Summary)
		}
		for i, tk := range v.TopTakeaways {
			if tk.Issue == "" && tk.Fix == "" {
				fmt.Fprintf(ui.Out, "Takeaway %d: (empty)\n", i+1)
				continue
			}
			fmt.Fprintf(ui.Out, "Takeaway %d: %s -> %s\n", i+1, tk.Issue, tk.Fix)
		}
		if v.ExecutiveSummary != nil {
			if v.ExecutiveSummary.TLDR != "" {
				fmt.Fprintf(ui.Out, "TLDR:      %s\n", v.ExecutiveSummary.TLDR)
			}
			if v.ExecutiveSummary.OverallReadiness != "" {
				fmt.Fprintf(ui.Out, "Readiness: %s\n", v.ExecutiveSummary.OverallReadiness)
			}
		}

		result := validate.Verdict(v)
		if result.IsValid {
			ui.Success("Verdict is complete")
		} else {
			for _, e := range result.Errors {
				ui.Warning("%s", e)
			}
		}
		return nil
	})
}
