// internal/cli/rank.go
package cli

import (
	"fmt"

	"pawmatch-workers/internal/common/validation"
	"pawmatch-workers/internal/matching"

	"github.com/spf13/cobra"
)

type rankOptions struct {
	profilePath    string
	candidatesPath string
	topK           int
	minScore       float64
	noFilter       bool
}

func newRankCmd(opts *globalOptions) *cobra.Command {
	ro := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a candidate list for an adopter",
		Long: `Rank candidates against an adopter profile, best match first.

Examples:
  pawmatch rank --profile adopter.json --candidates pets.json
  pawmatch rank --profile adopter.json --candidates pets.json --top-k 3 --min-score 0.6
  pawmatch rank --profile adopter.json --candidates pets.json --no-filter -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-k") || ro.topK <= 0 {
				ro.topK = cfg.Matching.TopK
			}
			if !cmd.Flags().Changed("min-score") {
				ro.minScore = cfg.Matching.MinScore
			}
			if ro.minScore < 0 || ro.minScore > 1 {
				return fmt.Errorf("--min-score must be between 0 and 1")
			}

			var profile matching.AdopterProfile
			if err := readJSON(ro.profilePath, &profile); err != nil {
				return err
			}
			var candidates []matching.CandidateRecord
			if err := readJSON(ro.candidatesPath, &candidates); err != nil {
				return err
			}
			if err := validation.ProfileError(profile); err != nil {
				return fmt.Errorf("profile: %w", err)
			}
			if err := validation.CandidatesError(candidates); err != nil {
				return fmt.Errorf("candidates: %w", err)
			}

			if cfg.Matching.PreferenceFilter && !ro.noFilter {
				candidates = matching.FilterByPreferences(profile, candidates)
			}

			matches := opts.engine(cfg).Rank(profile, candidates, ro.topK, ro.minScore)
			return writeOutput(cmd.OutOrStdout(), opts.outputFmt, matches)
		},
	}

	cmd.Flags().StringVar(&ro.profilePath, "profile", "", "adopter profile JSON file")
	cmd.Flags().StringVar(&ro.candidatesPath, "candidates", "", "JSON array of candidate records")
	cmd.Flags().IntVar(&ro.topK, "top-k", 10, "maximum matches to return (0 uses the configured default)")
	cmd.Flags().Float64Var(&ro.minScore, "min-score", 0.5, "drop matches below this overall score")
	cmd.Flags().BoolVar(&ro.noFilter, "no-filter", false, "skip the species/size/age preference filter")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}
