// internal/cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"pawmatch-workers/internal/matching"

	"github.com/olekukonko/tablewriter"
)

func writeOutput(w io.Writer, format string, data interface{}) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "table", "":
		return writeTable(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeTable(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []matching.Match:
		return matchesTable(w, v)
	case matching.MatchExplanation:
		return explanationTable(w, v)
	case matching.EvaluationMetrics:
		return metricsTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func matchesTable(w io.Writer, matches []matching.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches above the minimum score.")
		return err
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		tier, _ := matching.TierFor(m.Scores.Overall)
		rows = append(rows, []string{
			strconv.Itoa(m.Rank),
			m.Candidate.ID,
			m.Candidate.DisplayName(),
			string(m.Candidate.Species),
			score(m.Scores.Overall),
			score(m.Scores.Lifestyle),
			score(m.Scores.Personality),
			score(m.Scores.Practical),
			score(m.Scores.UrgencyBoost),
			tier,
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header("Rank", "ID", "Name", "Species", "Overall", "Lifestyle", "Personality", "Practical", "Urgency", "Tier")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func explanationTable(w io.Writer, e matching.MatchExplanation) error {
	fmt.Fprintf(w, "%s (%s): %s, %s\n", e.CandidateName, e.CandidateID, score(e.OverallScore), e.Recommendation)
	if e.Explanation != "" {
		fmt.Fprintln(w, e.Explanation)
	}

	rows := make([][]string, 0, len(e.Breakdown))
	for _, c := range e.Breakdown {
		rows = append(rows, []string{c.Name, score(c.Score), c.WeightLabel, c.Description})
	}
	table := tablewriter.NewWriter(w)
	table.Header("Component", "Score", "Weight", "Description")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, s := range e.Strengths {
		fmt.Fprintf(w, "  + %s\n", s)
	}
	for _, c := range e.Considerations {
		fmt.Fprintf(w, "  - %s\n", c)
	}
	return nil
}

func metricsTable(w io.Writer, m matching.EvaluationMetrics) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	if err := table.Bulk([][]string{
		{"cases", strconv.Itoa(m.Cases)},
		{"precision@5", score(m.PrecisionAt5)},
		{"recall@10", score(m.RecallAt10)},
		{"mrr", score(m.MRR)},
		{"ndcg@10", score(m.NDCGAt10)},
	}); err != nil {
		return err
	}
	return table.Render()
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
