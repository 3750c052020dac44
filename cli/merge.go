package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"videoninja/handlers"
	"videoninja/models"
	"videoninja/services"
)

type MergeOptions struct {
	First   string
	Second  string
	Audio   string
	Subject string
}

func NewMergeCommand() *cobra.Command {
	opts := &MergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge two videos and save the result to the library",
		Example: `  videoninja merge --first beach.mov --second city.mov
  videoninja merge --first beach.mov --second city.mov --audio song.m4a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.First, "first", "", "First video, played from the start")
	flags.StringVar(&opts.Second, "second", "", "Second video, played after the first")
	flags.StringVar(&opts.Audio, "audio", "", "Optional soundtrack for the whole movie")
	flags.StringVar(&opts.Subject, "subject", handlers.LocalSubject, "Library owner to save as")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("second")

	return cmd
}

func runMerge(ctx context.Context, opts *MergeOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}

	session := a.sessions.Create(opts.Subject)
	for _, slot := range []struct {
		slot models.Slot
		path string
	}{
		{models.SlotFirstVideo, opts.First},
		{models.SlotSecondVideo, opts.Second},
	} {
		asset, err := a.prober.Load(ctx, slot.path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", slot.path, err)
		}
		session.Assign(slot.slot, asset)
	}

	if opts.Audio != "" {
		asset, err := a.prober.Load(ctx, opts.Audio)
		if err != nil {
			printWarning("Audio Not Loaded: %v", err)
		} else {
			session.Assign(models.SlotAudio, asset)
		}
	}

	job, outcomes, err := a.merger.Merge(ctx, session, opts.Subject)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	var outcome services.MergeOutcome
	for waiting := true; waiting; {
		select {
		case outcome = <-outcomes:
			waiting = false
		case <-ticker.C:
			fmt.Printf("\rExporting %s %5.1f%%", color.CyanString(job.ID[:8]), job.Snapshot().Progress)
		}
	}
	fmt.Println()

	switch outcome.Job.Status {
	case models.ExportStatusCompleted:
		fmt.Printf("Exported %s\n", color.CyanString(outcome.Job.OutputPath))
	case models.ExportStatusCancelled:
		return fmt.Errorf("export cancelled")
	default:
		return fmt.Errorf("export failed: %w", outcome.Job.Err)
	}

	if outcome.Save != nil && !outcome.Save.Attempted {
		printWarning("Library access is %s, the movie was not saved", outcome.Save.Authorization.Value)
	}
	if outcome.Save != nil {
		printDialog(outcome.Save.Dialog)
	}
	return outcome.Err
}
