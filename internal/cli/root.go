package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declmeta/internal/config"
	"github.com/mvp-joe/declmeta/internal/logging"
)

var (
	projectDir string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "declmeta",
	Short: "Extract declaration metadata from TypeScript and TSX sources",
	Long: `declmeta reads TypeScript and TSX files and reports their top-level
declarations (functions, variables, classes, interfaces, type aliases,
enums, imports, exports, ambient modules and namespaces) as JSON or YAML.

Two backends are available:
  semantic   resolves inferred types across the whole batch
  syntactic  reads annotations only and adds React component and hook analysis
  auto       picks syntactic for TSX/JSX input, semantic otherwise

Settings are read from .declmeta/config.yml in the project directory and
DECLMETA_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", "", "project directory holding .declmeta/config.yml (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	loaded, err := config.LoadConfigFromDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	cfg = loaded
	return nil
}

// newLogger writes structured logs to w, which is always stderr or a test
// buffer so stdout stays free for results.
func newLogger(w io.Writer, c *config.Config, quiet bool) *slog.Logger {
	if c == nil {
		return logging.Discard()
	}
	return logging.FromConfig(w, c.Log, quiet)
}
