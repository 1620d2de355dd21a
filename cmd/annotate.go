package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/output"
	"github.com/critflow/studio/internal/studio"
)

var (
	annType      string
	annComment   string
	annColor     string
	annX         float64
	annY         float64
	annWidth     float64
	annHeight    float64
	annStart     int
	annEnd       int
	annText      string
	annTimestamp float64
	annCardType  string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Manage annotations on the reviewed work",
	Long: `Annotations anchor feedback to a place in the work: a pin or region
on an image, a text highlight, or a timestamp in audio/video. They start
unlinked and can be attached to one issue or strength card.`,
}

var annotateAddCmd = &cobra.Command{
	Use:   "add <slot-id>",
	Short: "Place an annotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return annotateAddRun(args[0])
	},
}

var annotateListCmd = &cobra.Command{
	Use:     "list <slot-id>",
	Aliases: []string{"ls"},
	Short:   "List a draft's annotations",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return annotateListRun(args[0])
	},
}

var annotateLinkCmd = &cobra.Command{
	Use:   "link <slot-id> <annotation> <card-id>",
	Short: "Link an annotation to a card",
	Long:  "Link an annotation to an issue or strength card.\nThe annotation can be named by ID prefix or display number (e.g. 3).",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return annotateLinkRun(args[0], args[1], args[2])
	},
}

var annotateUnlinkCmd = &cobra.Command{
	Use:   "unlink <slot-id> <annotation>",
	Short: "Detach an annotation from its card",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return annotateUnlinkRun(args[0], args[1])
	},
}

var annotateDeleteCmd = &cobra.Command{
	Use:   "delete <slot-id> <annotation>",
	Short: "Delete an annotation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return annotateDeleteRun(args[0], args[1])
	},
}

var annotateToCardCmd = &cobra.Command{
	Use:   "to-card <slot-id> <annotation>",
	Short: "Create a card from an annotation and link them in one step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return annotateToCardRun(args[0], args[1])
	},
}

func init() {
	annotateAddCmd.Flags().StringVar(&annType, "type", "pin", "Anchor type: pin, highlight, region, timestamp")
	annotateAddCmd.Flags().StringVar(&annComment, "comment", "", "Free-text note")
	annotateAddCmd.Flags().StringVar(&annColor, "color", "", "Display color")
	annotateAddCmd.Flags().Float64Var(&annX, "x", 0, "Horizontal position, percent (pin, region)")
	annotateAddCmd.Flags().Float64Var(&annY, "y", 0, "Vertical position, percent (pin, region)")
	annotateAddCmd.Flags().Float64Var(&annWidth, "width", 0, "Region width, percent")
	annotateAddCmd.Flags().Float64Var(&annHeight, "height", 0, "Region height, percent")
	annotateAddCmd.Flags().IntVar(&annStart, "start", 0, "Highlight start offset")
	annotateAddCmd.Flags().IntVar(&annEnd, "end", 0, "Highlight end offset")
	annotateAddCmd.Flags().StringVar(&annText, "text", "", "Highlighted text excerpt")
	annotateAddCmd.Flags().Float64Var(&annTimestamp, "at", 0, "Timestamp in seconds")

	annotateToCardCmd.Flags().StringVar(&annCardType, "card-type", "issue", "Card kind to create: issue or strength")

	annotateCmd.AddCommand(annotateAddCmd)
	annotateCmd.AddCommand(annotateListCmd)
	annotateCmd.AddCommand(annotateLinkCmd)
	annotateCmd.AddCommand(annotateUnlinkCmd)
	annotateCmd.AddCommand(annotateDeleteCmd)
	annotateCmd.AddCommand(annotateToCardCmd)
	rootCmd.AddCommand(annotateCmd)
}

func annotateAddRun(slotRef string) error {
	ann := models.Annotation{
		Type:         models.AnnotationType(annType),
		Comment:      annComment,
		Color:        annColor,
		X:            annX,
		Y:            annY,
		Width:        annWidth,
		Height:       annHeight,
		StartOffset:  annStart,
		EndOffset:    annEnd,
		SelectedText: annText,
		Timestamp:    annTimestamp,
	}
	if err := ann.Validate(); err != nil {
		return fmt.Errorf("invalid annotation: %w", err)
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		if dryRun {
			ui.DryRunMsg("Would add %s annotation to %s", annType, slotRef)
			return nil
		}

		st := sess.Dispatch(studio.AddAnnotation{Annotation: ann})
		added := st.Annotations[len(st.Annotations)-1]
		ui.Success("Added %s annotation #%d (%s)", annType, added.Number, output.Cyan(shortID(added.ID)))
		return nil
	})
}

func annotateListRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()

		if len(st.Annotations) == 0 {
			ui.Info("No annotations yet. Use 'studio annotate add'.")
			return nil
		}

		table := ui.Table([]string{"#", "ID", "Type", "Anchor", "Linked To", "Comment"})
		for _, a := range st.Annotations {
			linked := ""
			if a.LinkedCardID != "" {
				linked = shortID(a.LinkedCardID)
			}
			_ = table.Append([]string{
				fmt.Sprintf("%d", a.Number),
				shortID(a.ID),
				string(a.Type),
				anchorSummary(&a),
				linked,
				excerpt(a.Comment, 32),
			})
		}
		_ = table.Render()
		return nil
	})
}

func annotateLinkRun(slotRef, annRef, cardRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()
		annID, err := resolveAnnotation(st, annRef)
		if err != nil {
			return err
		}
		cardID, err := resolveCardID(st, cardRef)
		if err != nil {
			return err
		}

		if dryRun {
			ui.DryRunMsg("Would link annotation %s to card %s", shortID(annID), shortID(cardID))
			return nil
		}

		after := sess.Dispatch(studio.LinkAnnotation{AnnotationID: annID, CardID: cardID})
		linked := after.Annotations[after.FindAnnotation(annID)]
		if linked.LinkedCardID != cardID {
			return fmt.Errorf("link failed: card %s is not linkable", shortID(cardID))
		}

		ui.Success("Linked annotation #%d to card %s", linked.Number, output.Cyan(shortID(cardID)))
		return nil
	})
}

func annotateUnlinkRun(slotRef, annRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		annID, err := resolveAnnotation(sess.State(), annRef)
		if err != nil {
			return err
		}

		if dryRun {
			ui.DryRunMsg("Would unlink annotation %s", shortID(annID))
			return nil
		}

		sess.Dispatch(studio.UnlinkAnnotation{AnnotationID: annID})
		ui.Success("Unlinked annotation %s", output.Cyan(shortID(annID)))
		return nil
	})
}

func annotateDeleteRun(slotRef, annRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		annID, err := resolveAnnotation(sess.State(), annRef)
		if err != nil {
			return err
		}

		if dryRun {
			ui.DryRunMsg("Would delete annotation %s", shortID(annID))
			return nil
		}

		sess.Dispatch(studio.DeleteAnnotation{ID: annID})
		ui.Success("Deleted annotation %s", output.Cyan(shortID(annID)))
		return nil
	})
}

func annotateToCardRun(slotRef, annRef string) error {
	cardType := models.CardType(annCardType)
	if cardType != models.CardTypeIssue && cardType != models.CardTypeStrength {
		return fmt.Errorf("invalid card type: %s (must be issue or strength)", annCardType)
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		annID, err := resolveAnnotation(sess.State(), annRef)
		if err != nil {
			return err
		}

		if dryRun {
			ui.DryRunMsg("Would create %s card from annotation %s", cardType, shortID(annID))
			return nil
		}

		cardID := studio.NewID()
		after := sess.Dispatch(studio.CreateCardFromAnnotation{
			Type:         cardType,
			AnnotationID: annID,
			CardID:       cardID,
		})
		if after.FindIssueCard(cardID) < 0 && after.FindStrengthCard(cardID) < 0 {
			return fmt.Errorf("card was not created from annotation %s", shortID(annID))
		}

		ui.Success("Created %s card %s from annotation %s", cardType, output.Cyan(shortID(cardID)), shortID(annID))
		return nil
	})
}

// resolveAnnotation finds an annotation by display number, full ID, or
// unique ID prefix.
func resolveAnnotation(st *models.StudioState, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		for _, a := range st.Annotations {
			if a.Number == n {
				return a.ID, nil
			}
		}
		return "", fmt.Errorf("no annotation with number %d", n)
	}

	if st.FindAnnotation(ref) >= 0 {
		return ref, nil
	}

	var matches []string
	for _, a := range st.Annotations {
		if strings.HasPrefix(a.ID, ref) {
			matches = append(matches, a.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("annotation not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous annotation ID %s: matches %d annotations", ref, len(matches))
	}
}

// anchorSummary renders the anchor coordinates in one short cell.
func anchorSummary(a *models.Annotation) string {
	switch a.Type {
	case models.AnnotationPin:
		return fmt.Sprintf("%.0f%%, %.0f%%", a.X, a.Y)
	case models.AnnotationRegion:
		return fmt.Sprintf("%.0f%%, %.0f%% %.0fx%.0f", a.X, a.Y, a.Width, a.Height)
	case models.AnnotationHighlight:
		return fmt.Sprintf("[%d:%d]", a.StartOffset, a.EndOffset)
	case models.AnnotationTimestamp:
		if a.TimestampEnd != nil {
			return fmt.Sprintf("%.1fs-%.1fs", a.Timestamp, *a.TimestampEnd)
		}
		return fmt.Sprintf("%.1fs", a.Timestamp)
	default:
		return ""
	}
}
