// internal/cli/score.go
package cli

import (
	"fmt"

	"pawmatch-workers/internal/common/validation"
	"pawmatch-workers/internal/matching"

	"github.com/spf13/cobra"
)

func newScoreCmd(opts *globalOptions) *cobra.Command {
	var profilePath, candidatePath string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one candidate for an adopter",
		Long: `Score one candidate against an adopter profile and print the breakdown.

Examples:
  pawmatch score --profile adopter.json --candidate pet.json
  pawmatch score --profile adopter.json --candidate pet.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var profile matching.AdopterProfile
			if err := readJSON(profilePath, &profile); err != nil {
				return err
			}
			var candidate matching.CandidateRecord
			if err := readJSON(candidatePath, &candidate); err != nil {
				return err
			}
			if err := validation.ProfileError(profile); err != nil {
				return fmt.Errorf("profile: %w", err)
			}
			if err := validation.CandidatesError([]matching.CandidateRecord{candidate}); err != nil {
				return fmt.Errorf("candidate: %w", err)
			}

			m := opts.engine(cfg).Match(profile, candidate)
			return writeOutput(cmd.OutOrStdout(), opts.outputFmt, matching.ExplainMatch(m))
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "adopter profile JSON file")
	cmd.Flags().StringVar(&candidatePath, "candidate", "", "candidate record JSON file")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}
