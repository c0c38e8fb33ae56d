package analyse

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/model"
	"github.com/codeshield-io/codeshield/internal/review"
	"github.com/codeshield-io/codeshield/pkg/shared"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
	"github.com/codeshield-io/codeshield/pkg/shared/files"
	"github.com/codeshield-io/codeshield/pkg/shared/logger"
)

// ExitMismatch is returned when the declared language disagrees with the code.
const ExitMismatch = 2

// RunOptionsAnalyse holds the arguments for the analyse command.
type RunOptionsAnalyse struct {
	Language   string
	InputFile  string
	Format     string
	OutputPath string
}

// Global variables for configuration and command arguments
var (
	AppConfig           *config.Config
	analyseOptions      RunOptionsAnalyse
	exampleAnalyseUsage = `  # Reviewing a file
  codeshield analyse handlers/user.js

  # Reviewing a file declared as Python and printing a coloured report
  codeshield analyse --language python --format text app.py

  # Reviewing code piped on stdin and saving a SARIF report
  cat app.php | codeshield analyse --input-file - --format sarif --output results/

  # Saving the JSON result to a specific file
  codeshield analyse --input-file ./snippet.go --output /tmp/review.json`
)

// AnalyseCmd represents the analyse command.
var AnalyseCmd = &cobra.Command{
	Use:                   "analyse [--language/-l LANGUAGE] [--format/-f json|sarif|text] [--output/-o PATH] {--input-file/-i PATH | PATH}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyseUsage,
	Short:                 "Reviews a code snippet for security vulnerabilities with the hosted model",
	Long: `Reviews a code snippet for security vulnerabilities.

The snippet is sent to the hosted model. Its answer is checked against the locally
detected language and completed with a deterministic fix. When the declared language
disagrees with the code the command exits with code 2.`,
	RunE: runAnalyseCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runAnalyseCommand executes the analyse command.
func runAnalyseCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	lg := logger.NewLogger(AppConfig, "core-analyse")

	if err := validateAnalyseArgs(&analyseOptions, args); err != nil {
		lg.Error("invalid analyse arguments", "error", err)
		return errors.NewCommandError(err, 1)
	}

	target := targetPath(&analyseOptions, args)
	code, err := files.ReadSnippet(target, cmd.InOrStdin())
	if err != nil {
		lg.Error("failed to read snippet", "path", target, "error", err)
		return errors.NewCommandError(err, 1)
	}

	client, err := model.New(lg, AppConfig)
	if err != nil {
		lg.Error("model client is not configured", "error", err)
		return errors.NewCommandError(err, 1)
	}

	return analyse(cmd.Context(), client, analyseOptions, target, code, cmd.OutOrStdout(), lg)
}

// analyse runs the review and writes the result in the requested format.
func analyse(ctx context.Context, analyzer review.Analyzer, opts RunOptionsAnalyse, target, code string, stdout io.Writer, lg hclog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req := review.Request{Code: code, Language: shared.StringPtrIfSet(opts.Language)}
	result, err := review.Run(ctx, analyzer, req, lg)
	if err != nil {
		lg.Error("analysis failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("%s: %w", errors.PublicMessage(err), err), 1)
	}

	if err := writeResult(result, req, opts, target, stdout); err != nil {
		lg.Error("failed to write result", "error", err)
		return errors.NewCommandError(err, 1)
	}

	if result.Mismatch != nil {
		lg.Warn("language mismatch detected", "detected", result.Mismatch.DetectedLabel)
		return errors.NewCommandError(fmt.Errorf("language mismatch: %s", result.Mismatch.Message), ExitMismatch)
	}

	lg.Info("analyse command completed successfully", "issues", len(result.Issues))
	return nil
}

func writeResult(result analysis.Result, req review.Request, opts RunOptionsAnalyse, target string, stdout io.Writer) error {
	if opts.OutputPath == "" {
		data, err := render(result, req, opts.Format, artifactURI(target), stdout)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	fullPath, _, err := files.DetermineFileFullPath(opts.OutputPath, defaultReportName(opts.Format))
	if err != nil {
		return err
	}
	data, err := render(result, req, opts.Format, artifactURI(target), nil)
	if err != nil {
		return err
	}
	if err := files.WriteFile(fullPath, data); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Results saved to %s\n", fullPath)
	return nil
}

// Initialize flags for the analyse command.
func init() {
	AnalyseCmd.Flags().StringVarP(&analyseOptions.Language, "language", "l", "", "Language the snippet is declared to be written in (e.g., python, js, Go).")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.Format, "format", "f", FormatJSON, "Output format: json, sarif or text.")
	AnalyseCmd.Flags().BoolP("help", "h", false, "Show help for the analyse command.")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.InputFile, "input-file", "i", "", "Path to the snippet to review, or '-' to read it from stdin.")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.OutputPath, "output", "o", "", "Path to the output file or directory where the result will be saved.")
}
