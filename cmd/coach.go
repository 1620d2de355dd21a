package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/critflow/studio/internal/llm"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/output"
	"github.com/critflow/studio/internal/studio"
)

var coachApply bool

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "LLM-assisted review coaching",
	Long: `Ask the review coach for help turning rough notes into actionable
feedback. Requires anthropic.api_key in config or STUDIO_ANTHROPIC_API_KEY.`,
}

var coachFixCmd = &cobra.Command{
	Use:   "fix <slot-id> <card-id>",
	Short: "Suggest a concrete fix for an issue card",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return coachFixRun(args[0], args[1])
	},
}

var coachTakeawaysCmd = &cobra.Command{
	Use:   "takeaways <slot-id>",
	Short: "Draft the three verdict takeaways from the issue deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return coachTakeawaysRun(args[0])
	},
}

func init() {
	coachFixCmd.Flags().BoolVar(&coachApply, "apply", false, "Write the suggestion onto the card")
	coachTakeawaysCmd.Flags().BoolVar(&coachApply, "apply", false, "Write the takeaways onto the verdict")

	coachCmd.AddCommand(coachFixCmd)
	coachCmd.AddCommand(coachTakeawaysCmd)
	rootCmd.AddCommand(coachCmd)
}

func getCoach() (*llm.Client, error) {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured (set anthropic.api_key or STUDIO_ANTHROPIC_API_KEY)")
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model")), nil
}

func coachFixRun(slotRef, cardRef string) error {
	coach, err := getCoach()
	if err != nil {
		return err
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()
		cardID, err := resolveCardID(st, cardRef)
		if err != nil {
			return err
		}
		idx := st.FindIssueCard(cardID)
		if idx < 0 {
			return fmt.Errorf("card %s is not an issue card", shortID(cardID))
		}
		card := st.IssueCards[idx]
		if card.Issue == "" {
			return fmt.Errorf("card %s has no issue text to work from", shortID(cardID))
		}

		ui.Info("Asking the coach about card %s...", shortID(cardID))
		suggestion, err := coach.SuggestFix(rootCmd.Context(), &card, st.ContentType)
		if err != nil {
			return fmt.Errorf("coach: %w", err)
		}

		fmt.Fprintf(ui.Out, "Suggested fix: %s\n", suggestion.Fix)
		if suggestion.Effort != "" {
			fmt.Fprintf(ui.Out, "Effort:        %s\n", suggestion.Effort)
		}

		if !coachApply {
			return nil
		}
		if dryRun {
			ui.DryRunMsg("Would write the suggestion onto card %s", shortID(cardID))
			return nil
		}

		patch := studio.CardPatch{Fix: &suggestion.Fix}
		if suggestion.Effort != "" {
			e := models.Effort(suggestion.Effort)
			patch.Effort = &e
		}
		sess.Dispatch(studio.UpdateCard{ID: cardID, Patch: patch})
		ui.Success("Applied suggestion to card %s", output.Cyan(shortID(cardID)))
		return nil
	})
}

func coachTakeawaysRun(slotRef string) error {
	coach, err := getCoach()
	if err != nil {
		return err
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()
		if len(st.IssueCards) == 0 {
			return fmt.Errorf("no issue cards to distill (add cards first)")
		}

		ui.Info("Distilling %d issue card(s) into takeaways...", len(st.IssueCards))
		takeaways, err := coach.DraftTakeaways(rootCmd.Context(), st.IssueCards)
		if err != nil {
			return fmt.Errorf("coach: %w", err)
		}

		for i, tk := range takeaways {
			fmt.Fprintf(ui.Out, "%d. %s -> %s\n", i+1, tk.Issue, tk.Fix)
		}

		if !coachApply {
			return nil
		}
		if dryRun {
			ui.DryRunMsg("Would write %d takeaways onto the verdict", len(takeaways))
			return nil
		}

		sess.Dispatch(studio.UpdateVerdict{Patch: studio.VerdictPatch{TopTakeaways: takeaways}})
		ui.Success("Applied takeaways to the verdict")
		return nil
	})
}
