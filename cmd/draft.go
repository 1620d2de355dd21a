package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/critflow/studio/internal/draft"
	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/studio"
)

var (
	draftFormat   string
	draftOut      string
	rateStrengths string
	rateGaps      string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect and export review drafts",
}

var draftShowCmd = &cobra.Command{
	Use:   "show <slot-id>",
	Short: "Show a draft summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftShowRun(args[0])
	},
}

var draftExportCmd = &cobra.Command{
	Use:   "export <slot-id>",
	Short: "Export the serialized draft",
	Long:  "Export the draft in its wire format (json) or as yaml for reading.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftExportRun(args[0])
	},
}

var draftNotesCmd = &cobra.Command{
	Use:   "notes <slot-id> <text>",
	Short: "Replace the free-form notes on a draft",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftNotesRun(args[0], args[1])
	},
}

var draftFocusCmd = &cobra.Command{
	Use:   "focus <slot-id> <area>...",
	Short: "Set the focus areas for a review",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftFocusRun(args[0], args[1:])
	},
}

var draftRateCmd = &cobra.Command{
	Use:   "rate <slot-id> <dimension> <rating>",
	Short: "Rate one rubric dimension (1-5, 0 clears)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftRateRun(args[0], args[1], args[2])
	},
}

var draftContentTypeCmd = &cobra.Command{
	Use:   "content-type <slot-id> <type>",
	Short: "Record what kind of work is under review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftContentTypeRun(args[0], args[1])
	},
}

var draftResetCmd = &cobra.Command{
	Use:   "reset <slot-id>",
	Short: "Discard the draft and start over",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftResetRun(args[0])
	},
}

func init() {
	draftExportCmd.Flags().StringVar(&draftFormat, "format", "json", "Output format: json, yaml")
	draftExportCmd.Flags().StringVarP(&draftOut, "out", "o", "", "Write to file instead of stdout")

	draftRateCmd.Flags().StringVar(&rateStrengths, "strengths", "", "What works well on this dimension")
	draftRateCmd.Flags().StringVar(&rateGaps, "gaps", "", "What falls short on this dimension")

	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftExportCmd)
	draftCmd.AddCommand(draftNotesCmd)
	draftCmd.AddCommand(draftFocusCmd)
	draftCmd.AddCommand(draftRateCmd)
	draftCmd.AddCommand(draftContentTypeCmd)
	draftCmd.AddCommand(draftResetCmd)
	rootCmd.AddCommand(draftCmd)
}

func draftShowRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		st := sess.State()

		fmt.Fprintf(ui.Out, "Draft for slot %s\n", sess.SlotID())
		if st.ContentType != "" {
			fmt.Fprintf(ui.Out, "  Content:     %s\n", st.ContentType)
		}
		fmt.Fprintf(ui.Out, "  Issues:      %d\n", len(st.IssueCards))
		fmt.Fprintf(ui.Out, "  Strengths:   %d\n", len(st.StrengthCards))
		fmt.Fprintf(ui.Out, "  Annotations: %d\n", len(st.Annotations))
		if len(st.FocusAreas) > 0 {
			fmt.Fprintf(ui.Out, "  Focus:       %v\n", st.FocusAreas)
		}
		if len(st.RubricRatings) > 0 {
			fmt.Fprintf(ui.Out, "  Rubric:      %d dimension(s) rated\n", len(st.RubricRatings))
		}
		if st.Verdict == nil {
			fmt.Fprintf(ui.Out, "  Verdict:     (none)\n")
		} else if st.Verdict.Complete() {
			fmt.Fprintf(ui.Out, "  Verdict:     complete, rated %d/5\n", st.Verdict.Rating)
		} else {
			fmt.Fprintf(ui.Out, "  Verdict:     in progress\n")
		}

		gate := sess.Readiness()
		if gate.IsValid {
			ui.Success("Ready to submit")
		} else {
			ui.Info("%d blocker(s) before submission", len(gate.Errors))
		}
		return nil
	})
}

func draftExportRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		d := draft.FromState(sess.State(), time.Now().UTC())

		var data []byte
		var err error
		switch draftFormat {
		case "json":
			data, err = d.Encode()
		case "yaml":
			data, err = yaml.Marshal(d)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", draftFormat)
		}
		if err != nil {
			return fmt.Errorf("encode draft: %w", err)
		}

		if draftOut == "" {
			fmt.Fprintln(ui.Out, string(data))
			return nil
		}

		if dryRun {
			ui.DryRunMsg("Would write %d bytes to %s", len(data), draftOut)
			return nil
		}
		if err := os.WriteFile(draftOut, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", draftOut, err)
		}
		ui.Success("Exported draft to %s", draftOut)
		return nil
	})
}

func draftNotesRun(slotRef, text string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		sess.Dispatch(studio.SetNotes{Text: text})
		ui.Success("Notes updated")
		return nil
	})
}

func draftFocusRun(slotRef string, areas []string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		sess.Dispatch(studio.SetFocusAreas{Areas: areas})
		ui.Success("Focus areas set: %v", areas)
		return nil
	})
}

func draftRateRun(slotRef, dimension, ratingArg string) error {
	rating, err := strconv.Atoi(ratingArg)
	if err != nil || rating < 0 || rating > 5 {
		return fmt.Errorf("rating must be 0-5, got %q", ratingArg)
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		sess.Dispatch(studio.SetRubricRating{Dimension: dimension, Rating: rating})
		if rateStrengths != "" || rateGaps != "" {
			sess.Dispatch(studio.SetRubricRationale{
				Dimension: dimension,
				Rationale: models.RubricRationale{Strengths: rateStrengths, Gaps: rateGaps},
			})
		}
		if rating == 0 {
			ui.Success("Cleared rating for %s", dimension)
		} else {
			ui.Success("Rated %s %d/5", dimension, rating)
		}
		return nil
	})
}

func draftContentTypeRun(slotRef, contentType string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		sess.Dispatch(studio.SetContentType{ContentType: contentType})
		ui.Success("Content type set to %s", contentType)
		return nil
	})
}

func draftResetRun(slotRef string) error {
	return withSession(slotRef, func(sess *studio.Session) error {
		if dryRun {
			ui.DryRunMsg("Would reset the draft for %s", slotRef)
			return nil
		}

		sess.Dispatch(studio.Reset{})
		ui.Success("Draft reset for slot %s", slotRef)
		return nil
	})
}
