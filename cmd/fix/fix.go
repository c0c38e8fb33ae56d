package fix

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/fixes"
	"github.com/codeshield-io/codeshield/internal/report"
	"github.com/codeshield-io/codeshield/pkg/shared"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
	"github.com/codeshield-io/codeshield/pkg/shared/files"
	"github.com/codeshield-io/codeshield/pkg/shared/logger"
)

// RunOptionsFix holds the arguments for the fix command.
type RunOptionsFix struct {
	Title     string
	InputFile string
	Format    string
}

var (
	AppConfig       *config.Config
	fixOptions      RunOptionsFix
	exampleFixUsage = `  # Synthesizing a fix for an SQL injection in a file
  codeshield fix --title "SQL Injection" handlers/user.js

  # Printing a readable fix for a snippet on stdin
  cat app.py | codeshield fix --title "Path Traversal" -i - --format text`
)

// FixCmd represents the fix command.
var FixCmd = &cobra.Command{
	Use:                   "fix --title/-t TITLE [--format/-f json|text] {--input-file/-i PATH | PATH}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFixUsage,
	Short:                 "Synthesizes a deterministic fix for an issue title without calling the model",
	RunE:                  runFixCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runFixCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	lg := logger.NewLogger(AppConfig, "core-fix")

	target, err := validateFixArgs(&fixOptions, args)
	if err != nil {
		lg.Error("invalid fix arguments", "error", err)
		return errors.NewCommandError(err, 1)
	}

	code, err := files.ReadSnippet(target, cmd.InOrStdin())
	if err != nil {
		lg.Error("failed to read snippet", "path", target, "error", err)
		return errors.NewCommandError(err, 1)
	}

	suggested := fixes.Synthesize(fixOptions.Title, code)
	lg.Debug("synthesized fix", "class", fixes.Select(fixOptions.Title).String(), "annotated", suggested.CompleteAnnotatedCode != nil)

	if err := write(cmd.OutOrStdout(), suggested, fixOptions.Format); err != nil {
		return errors.NewCommandError(err, 1)
	}
	return nil
}

func write(w io.Writer, fix *analysis.SuggestedFix, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fix)
	}
	return report.RenderFix(w, fix, report.OptionsFor(w))
}

func validateFixArgs(options *RunOptionsFix, args []string) (string, error) {
	if options.Title == "" {
		return "", fmt.Errorf("the 'title' flag must be specified")
	}
	if options.Format != "text" && options.Format != "json" {
		return "", fmt.Errorf("unsupported format %q: use json or text", options.Format)
	}
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("only one target path can be specified")
	case len(args) == 1 && options.InputFile != "":
		return "", fmt.Errorf("you cannot use an 'input-file' flag and a target path at the same time")
	case len(args) == 1:
		return args[0], nil
	case options.InputFile != "":
		return options.InputFile, nil
	default:
		return "", fmt.Errorf("either 'input-file' flag or a target path must be specified")
	}
}

func init() {
	FixCmd.Flags().StringVarP(&fixOptions.Title, "title", "t", "", "Title of the issue to fix, e.g. \"SQL Injection\".")
	FixCmd.Flags().StringVarP(&fixOptions.InputFile, "input-file", "i", "", "Path to the snippet, or '-' to read it from stdin.")
	FixCmd.Flags().StringVarP(&fixOptions.Format, "format", "f", "json", "Output format: json or text.")
	FixCmd.Flags().BoolP("help", "h", false, "Show help for the fix command.")
}
