package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/templates"
	"application-builder/internal/models"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print a template populated for a job",
	Long:  "Populates a cover letter template with a job read from a JSON file and the built-in portfolio. Without --template the recommended template is used.",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

var (
	previewTemplate string
	previewJob      string
	previewUser     string
)

func init() {
	previewCmd.Flags().StringVarP(&previewTemplate, "template", "t", "", "Template ID (defaults to the recommendation for the job)")
	previewCmd.Flags().StringVarP(&previewJob, "job", "j", "", "Path to a JobResponse JSON file (required)")
	previewCmd.Flags().StringVarP(&previewUser, "user", "u", "", "Applicant name for the signature")

	if err := previewCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(previewJob)
	if err != nil {
		return fmt.Errorf("failed to read job file %s: %w", previewJob, err)
	}
	var job models.JobResponse
	if err := json.Unmarshal(content, &job); err != nil {
		return fmt.Errorf("failed to unmarshal job JSON: %w", err)
	}

	tpl := templates.Recommend(&job)
	if previewTemplate != "" {
		tpl, err = templates.Find(previewTemplate)
		if err != nil {
			return fmt.Errorf("%w: %s", err, previewTemplate)
		}
	}

	letter := templates.Populate(tpl.Template, &job, portfolio.NewDefaultRanker().Ranked(), previewUser)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s (%s)\n\n%s\n", tpl.Name, tpl.ID, letter)
	if unresolved := templates.UnresolvedTokens(letter); len(unresolved) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: unresolved placeholders: %s\n", strings.Join(unresolved, ", "))
	}
	return nil
}
