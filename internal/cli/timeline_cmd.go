package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/ics"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	var participant, icsPath string
	var rng *rangeFlags

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show events, tasks, invoices and contracts on one timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.resolve()
			if err != nil {
				return err
			}
			items, err := app.Timeline.Timeline(cmd.Context(), participant, from, to)
			if err != nil {
				return err
			}
			if icsPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimeline(items, app.loc(), app.now()))
				return nil
			}

			f, err := os.Create(icsPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", icsPath, err)
			}
			if err := ics.EncodeTimeline(f, items, app.now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", icsPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d item(s) to %s\n", len(items), icsPath)
			return nil
		},
	}

	rng = addRangeFlags(app, cmd.Flags(), 14)
	cmd.Flags().StringVar(&participant, "participant", "", "Participant ID")
	cmd.Flags().StringVar(&icsPath, "ics", "", "Write the timeline to an iCalendar file instead")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}
