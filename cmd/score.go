package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/critflow/studio/internal/output"
	"github.com/critflow/studio/internal/studio"
)

var scoreCmd = &cobra.Command{
	Use:   "score <slot-id>",
	Short: "Score the draft's review quality",
	Long: `Score a draft against the quality heuristics: completeness of the
review's sections, the estimated tone of the prose, sentence-level
clarity, and how actionable the feedback is. Scores are advisory and
never block submission.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scoreRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func scoreRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		m := sess.Metrics()

		table := ui.Table([]string{"Metric", "Score"})
		_ = table.Append([]string{"Completeness", output.ScoreColor(m.CompletenessScore)})
		_ = table.Append([]string{"Clarity", output.ScoreColor(m.ClarityScore)})
		_ = table.Append([]string{"Actionability", output.ScoreColor(m.ActionabilityScore)})
		_ = table.Append([]string{"Tone", string(m.EstimatedTone)})
		_ = table.Render()

		gate := sess.Readiness()
		if gate.IsValid {
			ui.Success("Draft passes the submission gate")
		} else {
			fmt.Fprintln(ui.Out)
			ui.Info("Submission gate: %d blocker(s)", len(gate.Errors))
			for _, e := range gate.Errors {
				ui.Warning("%s", e)
			}
		}
		return nil
	})
}
