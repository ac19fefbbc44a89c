// internal/cli/evaluate.go
package cli

import (
	"fmt"

	"pawmatch-workers/internal/matching"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(opts *globalOptions) *cobra.Command {
	var minScore float64

	cmd := &cobra.Command{
		Use:   "evaluate <cases.json>",
		Short: "Compute offline ranking metrics",
		Long: `Rank every labelled case and report precision@5, recall@10, MRR
and NDCG@10 averaged over the cases.

Each case is {"name", "profile", "candidates", "relevantIds"}.

Examples:
  pawmatch evaluate testdata/cases.json
  pawmatch evaluate testdata/cases.json --min-score 0 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-score") {
				minScore = cfg.Matching.MinScore
			}

			var cases []matching.EvaluationCase
			if err := readJSON(args[0], &cases); err != nil {
				return err
			}
			if len(cases) == 0 {
				return fmt.Errorf("%s contains no cases", args[0])
			}

			metrics := opts.engine(cfg).Evaluate(cases, minScore)
			return writeOutput(cmd.OutOrStdout(), opts.outputFmt, metrics)
		},
	}

	cmd.Flags().Float64Var(&minScore, "min-score", 0.5, "drop matches below this overall score")
	return cmd
}
