package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/critflow/studio/internal/bridge"
	"github.com/critflow/studio/internal/studio"
)

var submitAttachments []string

var submitCmd = &cobra.Command{
	Use:   "submit <slot-id>",
	Short: "Submit the review",
	Long: `Submit the slot's draft as the final review. The draft must pass the
readiness gate: a complete verdict and no half-finished cards. Any
pending autosave completes before the submission payload is frozen.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitRun(args[0])
	},
}

func init() {
	submitCmd.Flags().StringSliceVar(&submitAttachments, "attach", nil, "File to attach (repeatable)")
	rootCmd.AddCommand(submitCmd)
}

func submitRun(slotRef string) error {
	attachments, err := loadAttachments(submitAttachments)
	if err != nil {
		return err
	}

	return withSession(slotRef, func(sess *studio.Session) error {
		gate := sess.Readiness()
		if !gate.IsValid {
			ui.Error("Draft is not ready to submit:")
			for _, e := range gate.Errors {
				ui.Warning("%s", e)
			}
			return errors.New("submission blocked by validation")
		}

		if dryRun {
			ui.DryRunMsg("Would submit review for %s with %d attachment(s)", slotRef, len(attachments))
			return nil
		}

		if err := sess.Submit(rootCmd.Context(), attachments); err != nil {
			return fmt.Errorf("submit review: %w", err)
		}

		ui.Success("Review submitted for slot %s", slotRef)
		return nil
	})
}

// loadAttachments reads attachment files into bridge payloads.
func loadAttachments(paths []string) ([]bridge.Attachment, error) {
	var attachments []bridge.Attachment
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", p, err)
		}
		attachments = append(attachments, bridge.Attachment{
			Name:      filepath.Base(p),
			MediaType: mediaTypeFor(p),
			Data:      data,
		})
	}
	return attachments, nil
}

func mediaTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".md", ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
