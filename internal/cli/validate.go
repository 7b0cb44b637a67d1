package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"govready/internal/engine"
	"govready/internal/repository"
)

func newValidateCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-catalog [catalog-file]",
		Short: "Check a catalog for authoring mistakes",
		Long: `Validate a catalog before seeding it.

Reports questions pointing at unknown sections, conditions referencing
unknown personas, therapeutic areas, model types or scenarios, duplicate
section numbers and invalid question definitions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateCatalog(args[0], cmd.OutOrStdout())
		},
	}
}

func validateCatalog(path string, w io.Writer) error {
	catalog, err := repository.LoadCatalogFile(path)
	if err != nil {
		fmt.Fprintf(w, "Failed to parse %s: %v\n", path, err)
		return err
	}

	issues := engine.ValidateCatalog(catalog)
	if len(issues) > 0 {
		fmt.Fprintf(w, "Validation failed: %d issues in catalog %s\n", len(issues), catalog.Version)
		for _, issue := range issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
		return fmt.Errorf("catalog %s has %d issues", catalog.Version, len(issues))
	}

	fmt.Fprintf(w, "Catalog %s is valid: %d personas, %d sections, %d questions\n",
		catalog.Version, len(catalog.Personas), len(catalog.Sections), len(catalog.Questions))
	return nil
}
