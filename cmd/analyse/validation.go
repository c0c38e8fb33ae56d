package analyse

import (
	"fmt"
	"os"
)

// validateAnalyseArgs validates the arguments provided to the analyse command.
func validateAnalyseArgs(options *RunOptionsAnalyse, args []string) error {
	switch options.Format {
	case FormatJSON, FormatSARIF, FormatText:
	default:
		return fmt.Errorf("unsupported format %q: use json, sarif or text", options.Format)
	}

	if len(args) > 1 {
		return fmt.Errorf("only one target path can be specified")
	}

	if len(args) == 0 && options.InputFile == "" {
		return fmt.Errorf("either 'input-file' flag or a target path must be specified")
	}

	if len(args) == 1 {
		if options.InputFile != "" {
			return fmt.Errorf("you cannot use an 'input-file' flag and a target path at the same time")
		}
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("the target path does not exist: %v", args[0])
		}
	}

	return nil
}
