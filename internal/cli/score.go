package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"govready/internal/engine"
	"govready/internal/model"
)

func newScoreCommand() *cobra.Command {
	var catalogPath string
	var configPath string
	var asJSON bool
	var requireReady bool

	cmd := &cobra.Command{
		Use:   "score [assessment-file]",
		Short: "Score recorded responses against the resolved questions",
		Long: `Score the responses of an assessment file.

Scoring rules come from the govready config file when present
(scoring.production_ready_threshold, scoring.blocker_scale_cutoff).

Examples:
  govready score assessment.yaml --catalog catalog/ai-governance.yaml

  # Fail a CI job until the assessment is production ready
  govready score assessment.yaml --require-ready`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(scoreOptions{
				catalogPath:    catalogPath,
				configPath:     configPath,
				assessmentPath: args[0],
				asJSON:         asJSON,
				requireReady:   requireReady,
			}, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "catalog/ai-governance.yaml", "Catalog YAML file")
	cmd.Flags().StringVar(&configPath, "config", "govready.yaml", "Config file with scoring rules")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the score as JSON")
	cmd.Flags().BoolVar(&requireReady, "require-ready", false, "Exit with an error unless the assessment is production ready")

	return cmd
}

type scoreOptions struct {
	catalogPath    string
	configPath     string
	assessmentPath string
	asJSON         bool
	requireReady   bool
}

// runScore writes the score to w. In JSON mode skipped responses are also
// reported on errW, since the text summary already lists them.
func runScore(opts scoreOptions, w, errW io.Writer) error {
	cfg, err := scoringConfig(opts.configPath)
	if err != nil {
		return err
	}
	in, err := loadInputs(opts.catalogPath, opts.assessmentPath)
	if err != nil {
		return err
	}

	resolved, err := engine.Resolve(in.catalog, in.assessment.Context, false)
	if err != nil {
		return err
	}
	score, skipped, err := engine.Score(resolved, in.assessment.responseMap(), cfg.Scoring)
	if err != nil {
		return err
	}
	score.CatalogVersion = resolved.CatalogVersion

	if opts.asJSON {
		for _, cerr := range skipped {
			fmt.Fprintf(errW, "warning: %v\n", cerr)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(score); err != nil {
			return err
		}
	} else {
		printScore(w, score)
	}

	if opts.requireReady && score.ProductionStatus != model.ProductionReady {
		return fmt.Errorf("assessment is %s", score.ProductionStatus)
	}
	return nil
}

func printScore(w io.Writer, s *model.AssessmentScore) {
	fmt.Fprintf(w, "Score %.2f / %d (%d%%), %d of %d questions complete\n",
		s.CurrentScore, s.MaxPossibleScore, s.CompletionPercentage, s.CompletedQuestions, s.TotalQuestions)
	fmt.Fprintf(w, "Status: %s (%d critical blockers, %d open blockers)\n", s.ProductionStatus, s.CriticalBlockers, s.OpenBlockers)
	for _, sec := range s.Sections {
		fmt.Fprintf(w, "  %d. %-32s %6.2f / %-4d %3d%%  %d/%d complete",
			sec.SectionNumber, sec.Title, sec.EarnedPoints, sec.MaxPoints, sec.CompletionRate, sec.CompletedQuestions, sec.TotalQuestions)
		if sec.UnresolvedBlockers > 0 {
			fmt.Fprintf(w, "  %d unresolved blockers", sec.UnresolvedBlockers)
		}
		fmt.Fprintln(w)
	}
	for _, sk := range s.Skipped {
		fmt.Fprintf(w, "Skipped %s: %s\n", sk.QuestionID, sk.Reason)
	}
	for _, qid := range s.OrphanedResponses {
		fmt.Fprintf(w, "Orphaned response %s (question does not apply to this context)\n", qid)
	}
}
