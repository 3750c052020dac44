package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"videoninja/handlers"
	"videoninja/models"
	"videoninja/services"
	"videoninja/utils"
)

func NewLibraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the media library and its authorization",
	}

	cmd.AddCommand(NewLibraryListCommand())
	cmd.AddCommand(NewLibraryGrantCommand())
	cmd.AddCommand(NewLibraryImportCommand())

	return cmd
}

type LibraryListOptions struct {
	Kind         string
	OutputFormat string
}

func NewLibraryListCommand() *cobra.Command {
	opts := &LibraryListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibraryList(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Kind, "kind", "k", models.MediaKindVideo.Value, "Media kind (video or audio)")
	flags.StringVarP(&opts.OutputFormat, "output", "o", "text", "Output format (json or text)")

	cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return models.MediaKinds.Values(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runLibraryList(cmd *cobra.Command, opts *LibraryListOptions) error {
	kind := models.MediaKinds.Parse(opts.Kind)
	if kind == nil {
		return fmt.Errorf("unknown kind %q", opts.Kind)
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	items, err := a.library.List(cmd.Context(), *kind)
	if err != nil {
		return err
	}

	if opts.OutputFormat == "json" {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No items found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDURATION\tORIGIN\tCREATED")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Title, utils.FormatTimestamp(it.Duration()), it.Origin, it.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

type LibraryGrantOptions struct {
	Subject string
}

func NewLibraryGrantCommand() *cobra.Command {
	opts := &LibraryGrantOptions{}

	cmd := &cobra.Command{
		Use:   "grant [authorized|denied]",
		Short: "Show or answer the library authorization prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibraryGrant(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", handlers.LocalSubject, "Library owner")

	return cmd
}

func runLibraryGrant(cmd *cobra.Command, opts *LibraryGrantOptions, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		status := models.AuthorizationStatuses.Parse(args[0])
		if status == nil || *status == models.AuthorizationNotDetermined {
			return fmt.Errorf("status must be authorized or denied, got %q", args[0])
		}
		if err := a.auth.Set(cmd.Context(), opts.Subject, *status); err != nil {
			return err
		}
	}

	status, err := a.auth.Status(cmd.Context(), opts.Subject)
	if err != nil {
		return err
	}

	statusColor := color.New(color.Faint)
	switch status {
	case models.AuthorizationAuthorized:
		statusColor = color.New(color.FgGreen)
	case models.AuthorizationDenied:
		statusColor = color.New(color.FgRed)
	}
	fmt.Printf("%s: %s\n", opts.Subject, statusColor.Sprint(status.Value))
	return nil
}

type LibraryImportOptions struct {
	Subject string
}

func NewLibraryImportCommand() *cobra.Command {
	opts := &LibraryImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Copy video or audio files into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibraryImport(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", handlers.LocalSubject, "Library owner to import as")

	return cmd
}

func runLibraryImport(cmd *cobra.Command, opts *LibraryImportOptions, paths []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	var failed int
	for _, path := range paths {
		result, err := a.library.Import(cmd.Context(), opts.Subject, path)
		if err == nil && !result.Attempted {
			printWarning("Library access is %s, nothing was imported", result.Authorization.Value)
			return services.ErrNotAuthorized
		}
		fmt.Printf("%s: ", path)
		printDialog(result.Dialog)
		if err != nil {
			printWarning("  %v", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(paths))
	}
	return nil
}
