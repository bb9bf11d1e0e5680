package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rejaad/rearchive/internal/db"
	"github.com/rejaad/rearchive/pkg/models"
)

// newStatsCommand creates the stats command
func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <archive>",
		Short: "Summarize file counts and space usage of an archive",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runStats,
	}
}

func (a *app) runStats(cmd *cobra.Command, args []string) error {
	archivePath := a.cfg.ResolveArchivePath(args[0])

	root, err := loadTree(cmd.Context(), newCoordinator(), archivePath)
	if err != nil {
		return err
	}

	summary, err := db.SummarizeTree(cmd.Context(), archivePath, root)
	if err != nil {
		return fmt.Errorf("failed to summarize archive: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, cyan(summary.ArchivePath))
	fmt.Fprintln(w, "=========")
	fmt.Fprintf(w, "Files:   %d\n", summary.FileCount)
	fmt.Fprintf(w, "Folders: %d\n", summary.DirCount)
	fmt.Fprintf(w, "Size:    %s\n", models.FormatBytes(summary.TotalBytes))
	if !summary.Newest.IsZero() {
		fmt.Fprintf(w, "Newest:  %s\n", summary.Newest.Format("2006-01-02 15:04"))
	}

	if len(summary.TopLevel) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top level:")
	for _, u := range summary.TopLevel {
		name := blue(u.Name + "/")
		if u.Name == "" {
			name = "(archive root)"
		}
		fmt.Fprintf(w, "  %-30s %6d files  %s\n", name, u.FileCount, models.FormatBytes(u.Bytes))
	}
	return nil
}
