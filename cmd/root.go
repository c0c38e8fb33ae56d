package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeshield-io/codeshield/cmd/analyse"
	"github.com/codeshield-io/codeshield/cmd/detect"
	"github.com/codeshield-io/codeshield/cmd/fix"
	"github.com/codeshield-io/codeshield/cmd/serve"
	"github.com/codeshield-io/codeshield/cmd/version"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "codeshield [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "CodeShield reviews code snippets for security vulnerabilities.",
		Long: `CodeShield reviews code snippets for security vulnerabilities with a hosted model
	and makes the final call locally: it checks the declared language against the code
	and synthesizes a deterministic, annotated fix for the most relevant issue.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml, or $CODESHIELD_CONFIG)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(analyse.AnalyseCmd)
	rootCmd.AddCommand(detect.DetectCmd)
	rootCmd.AddCommand(fix.FixCmd)
	rootCmd.AddCommand(serve.ServeCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	var cmdErr *errors.CommandError
	if stderrors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
		return cmdErr.ExitCode
	}
	return 1
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	version.Init(AppConfig)
	analyse.Init(AppConfig)
	detect.Init(AppConfig)
	fix.Init(AppConfig)
	serve.Init(AppConfig)
}
