package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"govready/internal/engine"
	"govready/internal/model"
)

func newResolveCommand() *cobra.Command {
	var catalogPath string
	var asJSON bool
	var admin bool

	cmd := &cobra.Command{
		Use:   "resolve [assessment-file]",
		Short: "List the sections and questions that apply to a context",
		Long: `Resolve the context of an assessment file against a catalog.

Examples:
  # Human readable outline
  govready resolve assessment.yaml --catalog catalog/ai-governance.yaml

  # Full resolved view for an administrator
  govready resolve assessment.yaml --admin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(catalogPath, args[0], admin, asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "catalog/ai-governance.yaml", "Catalog YAML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved assessment as JSON")
	cmd.Flags().BoolVar(&admin, "admin", false, "Resolve with the administrator view (overrides adminView in the file)")

	return cmd
}

func runResolve(catalogPath, assessmentPath string, admin, asJSON bool, w io.Writer) error {
	in, err := loadInputs(catalogPath, assessmentPath)
	if err != nil {
		return err
	}

	resolved, err := engine.Resolve(in.catalog, in.assessment.Context, admin || in.assessment.AdminView)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	}
	printResolved(w, resolved)
	return nil
}

func printResolved(w io.Writer, r *model.ResolvedAssessment) {
	fmt.Fprintf(w, "Catalog %s: %d sections, %d questions, %d points, complexity %d (%s)\n",
		r.CatalogVersion, len(r.Sections), r.TotalQuestions, r.TotalPoints, r.ComplexityScore, r.ComplexityLevel)
	for _, sec := range r.Sections {
		critical := ""
		if sec.IsCriticalBlocker {
			critical = " [critical]"
		}
		fmt.Fprintf(w, "\n%d. %s%s: %d questions, %d points\n", sec.SectionNumber, sec.Title, critical, sec.TotalQuestions, sec.BasePoints)
		for _, q := range sec.Questions {
			tags := []string{string(q.Type), fmt.Sprintf("%d pts", q.Points)}
			if q.IsBlocker {
				tags = append(tags, "blocker")
			}
			fmt.Fprintf(w, "   - %s (%s) %s\n", q.ID, strings.Join(tags, ", "), q.Text)
		}
	}
}
