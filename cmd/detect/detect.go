package detect

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/language"
	"github.com/codeshield-io/codeshield/internal/mismatch"
	"github.com/codeshield-io/codeshield/internal/report"
	"github.com/codeshield-io/codeshield/pkg/shared"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
	"github.com/codeshield-io/codeshield/pkg/shared/files"
	"github.com/codeshield-io/codeshield/pkg/shared/logger"
)

// ExitMismatch is returned when the declared language disagrees with the code.
const ExitMismatch = 2

// RunOptionsDetect holds the arguments for the detect command.
type RunOptionsDetect struct {
	Language  string
	InputFile string
	Format    string
}

// Detection is the JSON form of the command output.
type Detection struct {
	Declared *string                  `json:"declared"`
	Verdict  language.Verdict         `json:"verdict"`
	Scores   []language.Score         `json:"scores"`
	Mismatch *analysis.MismatchReport `json:"languageMismatch"`
}

var (
	AppConfig          *config.Config
	detectOptions      RunOptionsDetect
	exampleDetectUsage = `  # Detecting the language of a file
  codeshield detect main.go

  # Checking whether a snippet really is TypeScript
  codeshield detect --language ts --input-file ./snippet.txt

  # Reading the snippet from stdin and printing JSON
  pbpaste | codeshield detect -i - --format json`
)

// DetectCmd represents the detect command.
var DetectCmd = &cobra.Command{
	Use:                   "detect [--language/-l LANGUAGE] [--format/-f text|json] {--input-file/-i PATH | PATH}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleDetectUsage,
	Short:                 "Detects the language of a snippet offline and checks it against a declared one",
	RunE:                  runDetectCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runDetectCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	lg := logger.NewLogger(AppConfig, "core-detect")

	target, err := validateDetectArgs(&detectOptions, args)
	if err != nil {
		lg.Error("invalid detect arguments", "error", err)
		return errors.NewCommandError(err, 1)
	}

	code, err := files.ReadSnippet(target, cmd.InOrStdin())
	if err != nil {
		lg.Error("failed to read snippet", "path", target, "error", err)
		return errors.NewCommandError(err, 1)
	}

	d := detect(code, shared.StringPtrIfSet(detectOptions.Language))
	lg.Debug("classified snippet", "label", d.Verdict.Label, "score", d.Verdict.Score)

	if err := write(cmd.OutOrStdout(), d, detectOptions.Format); err != nil {
		return errors.NewCommandError(err, 1)
	}
	if d.Mismatch != nil {
		return errors.NewCommandError(fmt.Errorf("language mismatch: %s", d.Mismatch.Message), ExitMismatch)
	}
	return nil
}

func detect(code string, declared *string) Detection {
	return Detection{
		Declared: declared,
		Verdict:  language.Classify(code),
		Scores:   language.Scores(code),
		Mismatch: mismatch.Reconcile(declared, code),
	}
}

func write(w io.Writer, d Detection, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return report.RenderDetection(w, d.Verdict, d.Scores, d.Mismatch, report.OptionsFor(w))
}

func validateDetectArgs(options *RunOptionsDetect, args []string) (string, error) {
	if options.Format != "text" && options.Format != "json" {
		return "", fmt.Errorf("unsupported format %q: use text or json", options.Format)
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
	DetectCmd.Flags().StringVarP(&detectOptions.Language, "language", "l", "", "Language the snippet is declared to be written in.")
	DetectCmd.Flags().StringVarP(&detectOptions.InputFile, "input-file", "i", "", "Path to the snippet, or '-' to read it from stdin.")
	DetectCmd.Flags().StringVarP(&detectOptions.Format, "format", "f", "text", "Output format: text or json.")
	DetectCmd.Flags().BoolP("help", "h", false, "Show help for the detect command.")
}
