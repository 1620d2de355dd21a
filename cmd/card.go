package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/output"
	"github.com/critflow/studio/internal/studio"
)

var (
	cardIssue    string
	cardFix      string
	cardCategory string
	cardPriority string
	cardSeverity string
	cardEffort   string
	cardLocation string
	cardWhat     string
	cardWhy      string
	cardImpact   string
	cardDeck     string
	cardFrom     int
	cardTo       int
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage review cards",
	Long: `Build the review's card decks: issue cards state a problem and its
fix, strength cards call out what works and why. Cards become complete
once their required text fields have real substance.`,
}

var cardAddIssueCmd = &cobra.Command{
	Use:   "add-issue <slot-id>",
	Short: "Add an issue card to a slot's draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cardAddIssueRun(args[0])
	},
}

var cardAddStrengthCmd = &cobra.Command{
	Use:   "add-strength <slot-id>",
	Short: "Add a strength card to a slot's draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cardAddStrengthRun(args[0])
	},
}

var cardListCmd = &cobra.Command{
	Use:     "list <slot-id>",
	Aliases: []string{"ls"},
	Short:   "List a draft's cards",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cardListRun(args[0])
	},
}

var cardUpdateCmd = &cobra.Command{
	Use:   "update <slot-id> <card-id>",
	Short: "Update fields on a card",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cardUpdateRun(args[0], args[1])
	},
}

var cardDeleteCmd = &cobra.Command{
	Use:   "delete <slot-id> <card-id>",
	Short: "Delete a card (linked annotations survive unlinked)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cardDeleteRun(args[0], args[1])
	},
}

var cardMoveCmd = &cobra.Command{
	Use:   "move <slot-id>",
	Short: "Move a card within its deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cardMoveRun(args[0])
	},
}

func init() {
	cardAddIssueCmd.Flags().StringVar(&cardIssue, "issue", "", "What is wrong (required)")
	cardAddIssueCmd.Flags().StringVar(&cardFix, "fix", "", "How to fix it")
	cardAddIssueCmd.Flags().StringVar(&cardCategory, "category", "", "Category: performance, ux, security, accessibility, maintainability, design, content, other")
	cardAddIssueCmd.Flags().StringVar(&cardPriority, "priority", "", "Priority: critical, important, nice-to-have")
	cardAddIssueCmd.Flags().StringVar(&cardSeverity, "severity", "", "Severity: critical, major, minor, suggestion")
	cardAddIssueCmd.Flags().StringVar(&cardEffort, "effort", "", "Effort: quick-fix, moderate, major-refactor")
	cardAddIssueCmd.Flags().StringVar(&cardLocation, "location", "", "Where the issue occurs")
	_ = cardAddIssueCmd.MarkFlagRequired("issue")

	cardAddStrengthCmd.Flags().StringVar(&cardWhat, "what", "", "What works well (required)")
	cardAddStrengthCmd.Flags().StringVar(&cardWhy, "why", "", "Why it works")
	cardAddStrengthCmd.Flags().StringVar(&cardImpact, "impact", "", "What impact it has")
	_ = cardAddStrengthCmd.MarkFlagRequired("what")

	cardUpdateCmd.Flags().StringVar(&cardIssue, "issue", "", "New issue text")
	cardUpdateCmd.Flags().StringVar(&cardFix, "fix", "", "New fix text")
	cardUpdateCmd.Flags().StringVar(&cardCategory, "category", "", "New category")
	cardUpdateCmd.Flags().StringVar(&cardPriority, "priority", "", "New priority")
	cardUpdateCmd.Flags().StringVar(&cardSeverity, "severity", "", "New severity")
	cardUpdateCmd.Flags().StringVar(&cardEffort, "effort", "", "New effort estimate")
	cardUpdateCmd.Flags().StringVar(&cardLocation, "location", "", "New location")
	cardUpdateCmd.Flags().StringVar(&cardWhat, "what", "", "New strength text")
	cardUpdateCmd.Flags().StringVar(&cardWhy, "why", "", "New reasoning text")
	cardUpdateCmd.Flags().StringVar(&cardImpact, "impact", "", "New impact text")

	cardMoveCmd.Flags().StringVar(&cardDeck, "deck", "issues", "Deck: issues or strengths")
	cardMoveCmd.Flags().IntVar(&cardFrom, "from", -1, "Current position (0-based)")
	cardMoveCmd.Flags().IntVar(&cardTo, "to", -1, "Target position (0-based)")
	_ = cardMoveCmd.MarkFlagRequired("from")
	_ = cardMoveCmd.MarkFlagRequired("to")

	cardCmd.AddCommand(cardAddIssueCmd)
	cardCmd.AddCommand(cardAddStrengthCmd)
	cardCmd.AddCommand(cardListCmd)
	cardCmd.AddCommand(cardUpdateCmd)
	cardCmd.AddCommand(cardDeleteCmd)
	cardCmd.AddCommand(cardMoveCmd)
	rootCmd.AddCommand(cardCmd)
}

// resolveSlotID expands a slot ID prefix against the local store. Remote
// bridges get the ID as given.
func resolveSlotID(ctx context.Context, id string) (string, error) {
	if viper.GetString("api.base_url") != "" {
		return id, nil
	}
	s, err := getStore()
	if err != nil {
		return "", err
	}
	slot, err := resolveSlot(ctx, s, id)
	if err != nil {
		return "", err
	}
	return slot.ID, nil
}

// withSession opens a slot's draft, runs fn, then flushes and closes the
// session. Dry-run skips the final save.
func withSession(slotRef string, fn func(*studio.Session) error) error {
	ctx := context.Background()

	slotID, err := resolveSlotID(ctx, slotRef)
	if err != nil {
		return err
	}

	b, err := getBridge()
	if err != nil {
		return err
	}

	sess, err := studio.Open(ctx, slotID, b, debounceDuration())
	if err != nil {
		return fmt.Errorf("open draft: %w", err)
	}
	defer sess.Close()

	if err := fn(sess); err != nil {
		return err
	}

	if dryRun {
		return nil
	}
	if err := sess.Save(ctx); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func cardAddIssueRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		if dryRun {
			ui.DryRunMsg("Would add issue card to %s: %s", slotRef, cardIssue)
			return nil
		}

		id := studio.NewID()
		sess.Dispatch(studio.AddIssueCard{ID: id})
		sess.Dispatch(studio.UpdateCard{ID: id, Patch: issuePatch()})

		ui.Success("Added issue card %s", output.Cyan(shortID(id)))
		return nil
	})
}

func issuePatch() studio.CardPatch {
	patch := studio.CardPatch{}
	if cardIssue != "" {
		patch.Issue = &cardIssue
	}
	if cardFix != "" {
		patch.Fix = &cardFix
	}
	if cardCategory != "" {
		c := models.IssueCategory(cardCategory)
		patch.Category = &c
	}
	if cardPriority != "" {
		p := models.Priority(cardPriority)
		patch.Priority = &p
	}
	if cardSeverity != "" {
		s := models.Severity(cardSeverity)
		patch.Severity = &s
	}
	if cardEffort != "" {
		e := models.Effort(cardEffort)
		patch.Effort = &e
	}
	if cardLocation != "" {
		patch.Location = &cardLocation
	}
	return patch
}

func strengthPatch() studio.CardPatch {
	patch := studio.CardPatch{}
	if cardWhat != "" {
		patch.What = &cardWhat
	}
	if cardWhy != "" {
		patch.Why = &cardWhy
	}
	if cardImpact != "" {
		patch.Impact = &cardImpact
	}
	return patch
}

func cardAddStrengthRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		if dryRun {
			ui.DryRunMsg("Would add strength card to %s: %s", slotRef, cardWhat)
			return nil
		}

		id := studio.NewID()
		sess.Dispatch(studio.AddStrengthCard{ID: id})
		sess.Dispatch(studio.UpdateCard{ID: id, Patch: strengthPatch()})

		ui.Success("Added strength card %s", output.Cyan(shortID(id)))
		return nil
	})
}

func cardListRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()

		if len(st.IssueCards) == 0 && len(st.StrengthCards) == 0 {
			ui.Info("No cards yet. Use 'studio card add-issue' or 'studio card add-strength'.")
			return nil
		}

		if len(st.IssueCards) > 0 {
			fmt.Fprintf(ui.Out, "Issues (%d)\n", len(st.IssueCards))
			table := ui.Table([]string{"ID", "Issue", "Severity", "Priority", "Pins", "Done"})
			for _, c := range st.IssueCards {
				_ = table.Append([]string{
					shortID(c.ID),
					excerpt(c.Issue, 48),
					output.SeverityColor(string(c.Severity)),
					output.PriorityColor(string(c.Priority)),
					fmt.Sprintf("%d", len(st.AnnotationIDs(c.ID))),
					completeMark(c.Complete()),
				})
			}
			_ = table.Render()
		}

		if len(st.StrengthCards) > 0 {
			fmt.Fprintf(ui.Out, "Strengths (%d)\n", len(st.StrengthCards))
			table := ui.Table([]string{"ID", "What", "Pins", "Done"})
			for _, c := range st.StrengthCards {
				_ = table.Append([]string{
					shortID(c.ID),
					excerpt(c.What, 48),
					fmt.Sprintf("%d", len(st.AnnotationIDs(c.ID))),
					completeMark(c.Complete()),
				})
			}
			_ = table.Render()
		}

		return nil
	})
}

func cardUpdateRun(slotRef, cardRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		cardID, err := resolveCardID(sess.State(), cardRef)
		if err != nil {
			return err
		}

		patch := issuePatch()
		sp := strengthPatch()
		patch.What, patch.Why, patch.Impact = sp.What, sp.Why, sp.Impact

		if patch == (studio.CardPatch{}) {
			return fmt.Errorf("no updates specified (see 'studio card update --help' for flags)")
		}

		if dryRun {
			ui.DryRunMsg("Would update card %s", shortID(cardID))
			return nil
		}

		sess.Dispatch(studio.UpdateCard{ID: cardID, Patch: patch})
		ui.Success("Updated card %s", output.Cyan(shortID(cardID)))
		return nil
	})
}

func cardDeleteRun(slotRef, cardRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()
		cardID, err := resolveCardID(st, cardRef)
		if err != nil {
			return err
		}

		orphaned := len(st.AnnotationIDs(cardID))

		if dryRun {
			ui.DryRunMsg("Would delete card %s (%d annotations would be unlinked)", shortID(cardID), orphaned)
			return nil
		}

		sess.Dispatch(studio.DeleteCard{ID: cardID})
		if orphaned > 0 {
			ui.Success("Deleted card %s, unlinked %d annotations", output.Cyan(shortID(cardID)), orphaned)
		} else {
			ui.Success("Deleted card %s", output.Cyan(shortID(cardID)))
		}
		return nil
	})
}

func cardMoveRun(slotRef string) error {
	if cardDeck != string(studio.DeckIssues) && cardDeck != string(studio.DeckStrengths) {
		return fmt.Errorf("invalid deck: %s (must be issues or strengths)", cardDeck)
	}
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()
		deckLen := len(st.IssueCards)
		if cardDeck == string(studio.DeckStrengths) {
			deckLen = len(st.StrengthCards)
		}
		if cardFrom < 0 || cardFrom >= deckLen || cardTo < 0 || cardTo >= deckLen {
			return fmt.Errorf("move %d -> %d is out of range for the %s deck (%d cards)", cardFrom, cardTo, cardDeck, deckLen)
		}

		if dryRun {
			ui.DryRunMsg("Would move %s card from %d to %d", cardDeck, cardFrom, cardTo)
			return nil
		}

		sess.Dispatch(studio.ReorderCards{
			Deck:     studio.Deck(cardDeck),
			OldIndex: cardFrom,
			NewIndex: cardTo,
		})

		ui.Success("Moved %s card %d -> %d", cardDeck, cardFrom, cardTo)
		return nil
	})
}

// resolveCardID expands a card ID prefix against the draft's decks.
func resolveCardID(st *models.StudioState, ref string) (string, error) {
	if st.FindIssueCard(ref) >= 0 || st.FindStrengthCard(ref) >= 0 {
		return ref, nil
	}

	var matches []string
	for _, c := range st.IssueCards {
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c.ID)
		}
	}
	for _, c := range st.StrengthCards {
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("card not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous card ID %s: matches %d cards", ref, len(matches))
	}
}

func excerpt(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func completeMark(done bool) string {
	if done {
		return output.Green("yes")
	}
	return output.Yellow("no")
}
