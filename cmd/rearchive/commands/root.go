package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rejaad/rearchive/internal/buildinfo"
	"github.com/rejaad/rearchive/internal/config"
	"github.com/rejaad/rearchive/internal/extraction"
	"github.com/rejaad/rearchive/internal/logging"
	"github.com/rejaad/rearchive/internal/metrics"
	"github.com/rejaad/rearchive/internal/reader"
	"github.com/rejaad/rearchive/internal/tree"
	"github.com/rejaad/rearchive/internal/tui"
)

var (
	debugMode   bool
	configPath  string
	logLevel    string
	metricsFile string
)

// app carries the settings loaded for one invocation to every command
type app struct {
	cfg *config.Config
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd, _ := newRootCommand()
	return rootCmd
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "rearchive [archive]",
		Short: "Browse and extract 7z, zip, rar and tar archives",
		Long: `rearchive is a TUI application for browsing archive contents as a folder tree
and extracting everything or a selection of files and folders.`,
		Version:           buildinfo.Version,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Run in debug mode (print the archive tree without TUI)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/rearchive/settings.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(newShowCommand(a))
	rootCmd.AddCommand(newExtractCommand(a))
	rootCmd.AddCommand(newStatsCommand(a))
	rootCmd.AddCommand(newDebugCommand(a))

	return rootCmd, a
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd, a := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	a.flush()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads settings and initializes logging. The TUI logs to a file so the
// terminal stays clean; everything else logs to stderr.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if cmd.Flags().Changed("metrics-file") {
		loaded.MetricsFile = metricsFile
	}
	a.cfg = loaded

	output := "stderr"
	if cmd == cmd.Root() && !debugMode {
		output = loaded.LogFile
	}

	return logging.Init(logging.Config{
		Level:      loaded.LogLevel,
		Format:     loaded.LogFormat,
		OutputPath: output,
	})
}

func (a *app) flush() {
	if a.cfg != nil && a.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			logging.S().Warnw("failed to write metrics", "path", a.cfg.MetricsFile, "error", err)
		}
	}
	_ = logging.Sync()
}

func newCoordinator() *extraction.Coordinator {
	return extraction.NewCoordinator(reader.New(), extraction.WithLogger(logging.L()))
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	coord := newCoordinator()

	// Debug mode: just print the tree without TUI
	if debugMode {
		if len(args) == 0 {
			return fmt.Errorf("--debug needs an archive path")
		}
		root, err := loadTree(cmd.Context(), coord, a.cfg.ResolveArchivePath(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "=== Debug Mode: Archive Tree ===")
		printTree(cmd.OutOrStdout(), root)
		return nil
	}

	exec := extraction.NewExecutor(coord)
	defer exec.Close()

	initialArchive := ""
	if len(args) == 1 {
		initialArchive = args[0]
	}

	if err := tui.ShowTUI(a.cfg, exec, initialArchive); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// loadTree lists archivePath off the calling goroutine and builds its tree
func loadTree(ctx context.Context, coord *extraction.Coordinator, archivePath string) (*tree.Node, error) {
	result, ok := <-coord.ListContentsAsync(ctx, archivePath)
	if !ok {
		return nil, ctx.Err()
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return tree.Build(result.Entries), nil
}

// printTree writes every node under root, indented by depth
func printTree(w io.Writer, root *tree.Node) {
	tree.Walk(root, func(n *tree.Node) bool {
		if n == root {
			return true
		}
		indent := ""
		for i := 0; i < n.Depth(); i++ {
			indent += "  "
		}
		if n.IsDir() {
			fmt.Fprintf(w, "%s%s/\n", indent, blue(n.Name))
		} else {
			fmt.Fprintf(w, "%s%s (%d bytes)\n", indent, n.Name, n.Size)
		}
		return true
	})
}
