package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rejaad/rearchive/internal/reader"
)

// newDebugCommand creates the debug-archive command
func newDebugCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "debug-archive <archive>",
		Short: "Debug an archive to see raw entries as the reader reports them",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runDebugArchive,
	}
}

func (a *app) runDebugArchive(cmd *cobra.Command, args []string) error {
	archivePath := a.cfg.ResolveArchivePath(args[0])
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Debugging archive: %s\n", archivePath)
	fmt.Fprintln(w, "==========================================")

	format, err := reader.DetectFormat(archivePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Format: %s\n", format)

	entries, err := newCoordinator().ListContents(cmd.Context(), archivePath)
	if err != nil {
		return fmt.Errorf("failed to debug archive: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found in this archive")
		return nil
	}

	fmt.Fprintf(w, "Found %d entries:\n", len(entries))
	for i, e := range entries {
		kind := "file"
		if e.IsDir {
			kind = "dir "
		}
		modified := "-"
		if !e.Modified.IsZero() {
			modified = e.Modified.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%4d  %s  %10d  %s  %q\n", i+1, kind, e.Size, modified, e.Path)
	}
	return nil
}
