package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/critflow/studio/internal/models"
	"github.com/critflow/studio/internal/output"
	"github.com/critflow/studio/internal/store"
)

var (
	slotTitle       string
	slotContentType string
	slotReviewer    string
	slotStatus      string
)

var slotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Manage review slots",
	Long:  "A slot is one piece of work awaiting one structured review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return slotListRun()
	},
}

var slotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new review slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return slotCreateRun()
	},
}

var slotListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List review slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return slotListRun()
	},
}

var slotShowCmd = &cobra.Command{
	Use:   "show <slot-id>",
	Short: "Show slot details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return slotShowRun(args[0])
	},
}

var slotClaimCmd = &cobra.Command{
	Use:   "claim <slot-id>",
	Short: "Claim an open slot for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return slotClaimRun(args[0])
	},
}

var slotDeleteCmd = &cobra.Command{
	Use:   "delete <slot-id>",
	Short: "Delete a slot and its draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return slotDeleteRun(args[0])
	},
}

func init() {
	slotCreateCmd.Flags().StringVar(&slotTitle, "title", "", "Slot title (required)")
	slotCreateCmd.Flags().StringVar(&slotContentType, "type", "other", "Content type: design, code, writing, video, other")
	_ = slotCreateCmd.MarkFlagRequired("title")

	slotListCmd.Flags().StringVar(&slotStatus, "status", "", "Filter by status: open, claimed, submitted")
	slotListCmd.Flags().StringVar(&slotReviewer, "reviewer", "", "Filter by reviewer")

	slotClaimCmd.Flags().StringVar(&slotReviewer, "reviewer", "", "Reviewer name (default from config)")

	slotCmd.AddCommand(slotCreateCmd)
	slotCmd.AddCommand(slotListCmd)
	slotCmd.AddCommand(slotShowCmd)
	slotCmd.AddCommand(slotClaimCmd)
	slotCmd.AddCommand(slotDeleteCmd)
	rootCmd.AddCommand(slotCmd)
}

func slotCreateRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	slot := &models.Slot{
		Title:       slotTitle,
		ContentType: slotContentType,
		Status:      models.SlotStatusOpen,
	}

	if dryRun {
		ui.DryRunMsg("Would create slot: %s [%s]", slotTitle, slotContentType)
		return nil
	}

	if err := s.CreateSlot(ctx, slot); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	ui.Success("Created slot %s: %s", output.Cyan(shortID(slot.ID)), slot.Title)
	return nil
}

func slotListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	slots, err := s.ListSlots(ctx, store.SlotListFilter{
		Status:   models.SlotStatus(slotStatus),
		Reviewer: slotReviewer,
	})
	if err != nil {
		return err
	}

	if len(slots) == 0 {
		ui.Info("No slots found. Use 'studio slot create --title ...' to get started.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Type", "Status", "Reviewer", "Created"})
	for _, slot := range slots {
		_ = table.Append([]string{
			shortID(slot.ID),
			slot.Title,
			slot.ContentType,
			output.SlotStatusColor(string(slot.Status)),
			slot.Reviewer,
			timeAgo(slot.CreatedAt),
		})
	}
	_ = table.Render()
	return nil
}

func slotShowRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	slot, err := resolveSlot(ctx, s, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(shortID(slot.ID)), slot.Title)
	fmt.Fprintf(ui.Out, "  Type:       %s\n", slot.ContentType)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.SlotStatusColor(string(slot.Status)))
	if slot.Reviewer != "" {
		fmt.Fprintf(ui.Out, "  Reviewer:   %s\n", slot.Reviewer)
	}
	if slot.ClaimedAt != nil {
		fmt.Fprintf(ui.Out, "  Claimed:    %s\n", slot.ClaimedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(ui.Out, "  Created:    %s\n", slot.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", slot.ID)

	// Draft summary if one exists
	if rec, err := s.GetDraft(ctx, slot.ID); err == nil {
		fmt.Fprintf(ui.Out, "  Draft:      %s v%d, saved %s\n", rec.Format, rec.Version, timeAgo(rec.UpdatedAt))
	}

	return nil
}

func slotClaimRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	slot, err := resolveSlot(ctx, s, id)
	if err != nil {
		return err
	}

	if slot.Status != models.SlotStatusOpen {
		return fmt.Errorf("slot %s is %s, not open", shortID(slot.ID), slot.Status)
	}

	reviewer := slotReviewer
	if reviewer == "" {
		reviewer = viper.GetString("reviewer")
	}
	if reviewer == "" {
		return fmt.Errorf("no reviewer name (use --reviewer or set 'reviewer' in config)")
	}

	if dryRun {
		ui.DryRunMsg("Would claim slot %s as %s", shortID(slot.ID), reviewer)
		return nil
	}

	now := time.Now().UTC()
	slot.Status = models.SlotStatusClaimed
	slot.Reviewer = reviewer
	slot.ClaimedAt = &now

	if err := s.UpdateSlot(ctx, slot); err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}

	ui.Success("Claimed slot %s as %s", output.Cyan(shortID(slot.ID)), reviewer)
	return nil
}

func slotDeleteRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	slot, err := resolveSlot(ctx, s, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete slot %s: %s", shortID(slot.ID), slot.Title)
		return nil
	}

	if err := s.DeleteSlot(ctx, slot.ID); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	ui.Success("Deleted slot %s", shortID(slot.ID))
	return nil
}

// resolveSlot finds a slot by full ID or unique prefix.
func resolveSlot(ctx context.Context, s store.Store, id string) (*models.Slot, error) {
	// Try exact match first
	if slot, err := s.GetSlot(ctx, id); err == nil {
		return slot, nil
	}

	upper := strings.ToUpper(id)
	slots, err := s.ListSlots(ctx, store.SlotListFilter{})
	if err != nil {
		return nil, err
	}

	var matches []*models.Slot
	for _, slot := range slots {
		if strings.HasPrefix(slot.ID, upper) {
			matches = append(matches, slot)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("slot not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous slot ID %s: matches %d slots", id, len(matches))
	}
}

// timeAgo formats a timestamp as relative time.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}
