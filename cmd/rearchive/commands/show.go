package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rejaad/rearchive/internal/tree"
	"github.com/rejaad/rearchive/pkg/models"
)

// newShowCommand creates the show command
func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <archive> [folder]",
		Short: "Show archive contents without TUI",
		Long: `Show archive contents in a non-interactive format.
With an archive: lists the top level of the archive
With a folder path: lists the contents of that folder`,
		Args: cobra.RangeArgs(1, 2),
		RunE: a.runShow,
	}
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	archivePath := a.cfg.ResolveArchivePath(args[0])

	root, err := loadTree(cmd.Context(), newCoordinator(), archivePath)
	if err != nil {
		return err
	}

	folder := root
	if len(args) == 2 {
		folder = tree.Find(root, args[1])
		if folder == nil {
			return fmt.Errorf("%s not found in %s", args[1], archivePath)
		}
	}

	w := cmd.OutOrStdout()
	if !folder.IsDir() {
		fmt.Fprintf(w, "%s  %s  %s\n", folder.Path, models.FormatSize(folder.Size), formatModified(folder))
		return nil
	}

	if len(folder.Children()) == 0 {
		fmt.Fprintln(w, "No entries found")
		return nil
	}

	title := archivePath
	if folder != root {
		title = archivePath + ": " + folder.Path
	}
	fmt.Fprintln(w, cyan(title))
	for _, n := range folder.Children() {
		if n.IsDir() {
			fmt.Fprintf(w, "  %s/  (%d files, %s)\n", blue(n.Name), tree.CountFiles(n), models.FormatSize(tree.TotalSize(n)))
			continue
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", n.Name, models.FormatSize(n.Size), formatModified(n))
	}
	return nil
}

func formatModified(n *tree.Node) string {
	if n.Modified.IsZero() {
		return "-"
	}
	return n.Modified.Format("2006-01-02 15:04")
}
