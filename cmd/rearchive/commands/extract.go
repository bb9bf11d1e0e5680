package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rejaad/rearchive/internal/extraction"
	"github.com/rejaad/rearchive/internal/tree"
)

var (
	outputDir string
	quiet     bool
)

// newExtractCommand creates the extract command
func newExtractCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive> [paths...]",
		Short: "Extract an archive, or selected files and folders from it",
		Long: `Extract every entry of an archive, or only the named paths.
Folders expand to every file beneath them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runExtract,
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory (default: the archive's directory)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the progress bar")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	archivePath := a.cfg.ResolveArchivePath(args[0])
	dest := outputDir
	if dest == "" {
		dest = filepath.Dir(archivePath)
	}

	coord := newCoordinator()

	var targets []string
	if len(args) > 1 {
		root, err := loadTree(cmd.Context(), coord, archivePath)
		if err != nil {
			return err
		}
		targets, err = resolveTargets(root, args[1:])
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return extraction.ErrEmptySelection
		}
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Extracting"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
				BarStart: "[", BarEnd: "]",
			}),
		)
	}

	exec := extraction.NewExecutor(coord)
	defer exec.Close()

	id := exec.SubmitExtract(archivePath, dest, targets)
	var done extraction.Event
	for !done.Done {
		select {
		case ev := <-exec.Events():
			if ev.RequestID != id {
				continue
			}
			if bar != nil {
				_ = bar.Set(int(ev.Progress))
			}
			done = ev
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if done.Err != nil {
		return done.Err
	}

	w := cmd.OutOrStdout()
	if targets == nil {
		fmt.Fprintln(w, green("Extraction completed successfully!"))
	} else {
		fmt.Fprintln(w, green(fmt.Sprintf("Successfully extracted %d files!", len(targets))))
	}
	fmt.Fprintf(w, "Destination: %s\n", yellow(dest))
	return nil
}

// resolveTargets maps user-supplied archive paths to tree nodes and expands them
// to file paths. Every path must exist in the archive.
func resolveTargets(root *tree.Node, paths []string) ([]string, error) {
	var nodes []*tree.Node
	var missing []string
	for _, p := range paths {
		n := tree.Find(root, p)
		if n == nil {
			missing = append(missing, p)
			continue
		}
		nodes = append(nodes, n)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not found in archive: %s", red(strings.Join(missing, ", ")))
	}
	return tree.Resolve(root, nodes), nil
}
