// internal/cli/explain.go
package cli

import (
	"fmt"

	"pawmatch-workers/internal/matching"

	"github.com/spf13/cobra"
)

func newExplainCmd(opts *globalOptions) *cobra.Command {
	var matchPath, profilePath string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a saved match",
		Long: `Expand a match (one element of "rank -o json") into its weighted
components, strengths and considerations. When the match carries no
rationale and --profile is given, the rationale is regenerated.

Examples:
  pawmatch explain --match match.json
  pawmatch explain --match match.json --profile adopter.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m matching.Match
			if err := readJSON(matchPath, &m); err != nil {
				return err
			}
			if m.Candidate.ID == "" {
				return fmt.Errorf("match has no candidate id")
			}

			if m.Explanation == "" && profilePath != "" {
				var profile matching.AdopterProfile
				if err := readJSON(profilePath, &profile); err != nil {
					return err
				}
				m.Explanation, m.KeyFactors, m.PotentialConcerns = matching.Explain(m.Candidate, profile, m.Scores)
			}

			return writeOutput(cmd.OutOrStdout(), opts.outputFmt, matching.ExplainMatch(m))
		},
	}

	cmd.Flags().StringVar(&matchPath, "match", "", "match JSON file")
	cmd.Flags().StringVar(&profilePath, "profile", "", "adopter profile JSON file, used to regenerate the rationale")
	_ = cmd.MarkFlagRequired("match")
	return cmd
}
