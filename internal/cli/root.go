// internal/cli/root.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"pawmatch-workers/internal/common/config"
	"pawmatch-workers/internal/matching"

	"github.com/spf13/cobra"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

type globalOptions struct {
	configPath string
	outputFmt  string
}

// NewRootCmd builds the pawmatch command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "pawmatch",
		Short: "Score and rank adoptable pets against an adopter profile",
		Long: `pawmatch runs the compatibility engine locally against JSON files.

It provides:
  - score:    one adopter against one candidate
  - rank:     one adopter against a candidate list
  - explain:  expand a saved match into a readable breakdown
  - evaluate: offline ranking metrics over labelled cases`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: built-in defaults plus environment)")
	root.PersistentFlags().StringVarP(&opts.outputFmt, "output", "o", "table",
		"output format (table, json)")

	root.AddCommand(
		newScoreCmd(opts),
		newRankCmd(opts),
		newExplainCmd(opts),
		newEvaluateCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pawmatch %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", buildTime)
			fmt.Fprintf(out, "  model:  %s\n", matching.ModelVersion(matching.WeightedStrategy{}))
		},
	}
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default()
	}
	return config.LoadFromFile(o.configPath)
}

func (o *globalOptions) engine(cfg *config.Config) *matching.Engine {
	return matching.NewEngine(matching.WithParallelism(cfg.Matching.Parallelism))
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
