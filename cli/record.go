package cli

import (
	"github.com/spf13/cobra"

	"videoninja/handlers"
	"videoninja/services"
)

type RecordOptions struct {
	Subject string
}

func NewRecordCommand() *cobra.Command {
	opts := &RecordOptions{}

	cmd := &cobra.Command{
		Use:   "record <file>",
		Short: "Save a captured movie to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", handlers.LocalSubject, "Library owner to save as")

	return cmd
}

func runRecord(cmd *cobra.Command, opts *RecordOptions, path string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	result, err := a.library.Record(cmd.Context(), opts.Subject, path)
	printDialog(result.Dialog)
	if err != nil {
		return err
	}
	if !result.Attempted {
		printWarning("Library access is %s, the movie was not saved", result.Authorization.Value)
		return services.ErrNotAuthorized
	}
	return nil
}
