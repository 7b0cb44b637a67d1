package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"govready/internal/config"
	"govready/internal/model"
	"govready/internal/repository"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for govready
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "govready",
		Short: "Offline assessment resolution and scoring",
		Long: `govready evaluates a governance catalog without a server.

It resolves which sections and questions apply to a context, scores a set
of recorded responses with the same rules the API uses, and checks catalogs
for authoring mistakes before they are seeded.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newValidateCatalogCommand())

	return cmd
}

// assessmentFile is the YAML input of resolve and score
type assessmentFile struct {
	Context   model.ResolutionContext `yaml:"context"`
	AdminView bool                    `yaml:"adminView"`
	Responses []model.Response        `yaml:"responses"`
}

func loadAssessmentFile(path string) (*assessmentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assessment file: %w", err)
	}
	var f assessmentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse assessment file: %w", err)
	}
	return &f, nil
}

// responseMap keys responses by question; a later entry for the same question wins
func (f *assessmentFile) responseMap() map[string]model.Response {
	out := make(map[string]model.Response, len(f.Responses))
	for _, r := range f.Responses {
		out[r.QuestionID] = r
	}
	return out
}

type inputs struct {
	catalog    *model.Catalog
	assessment *assessmentFile
}

func loadInputs(catalogPath, assessmentPath string) (*inputs, error) {
	catalog, err := repository.LoadCatalogFile(catalogPath)
	if err != nil {
		return nil, err
	}
	assessment, err := loadAssessmentFile(assessmentPath)
	if err != nil {
		return nil, err
	}
	return &inputs{catalog: catalog, assessment: assessment}, nil
}

// scoringConfig reads scoring rules from a govready config file; a missing file yields defaults
func scoringConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return nil, fmt.Errorf("scoring rules: %w", err)
	}
	return cfg, nil
}
