package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/codeshield-io/codeshield/internal/language"
	"github.com/codeshield-io/codeshield/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = runtime.Version()
	BuildTime     = "unknown"

	asJSON bool
)

// Versions holds build information of the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// ModelMeta describes the hosted model the analysis is delegated to.
type ModelMeta struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// CoreVersions is the full output of the version command.
type CoreVersions struct {
	Versions  Versions  `json:"versions"`
	Model     ModelMeta `json:"model"`
	Languages []string  `json:"languages"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "version [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version of the application and the model it uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersionInfo(cmd.OutOrStdout(), collect(AppConfig), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON.")
	return cmd
}

func collect(cfg *config.Config) CoreVersions {
	settings := config.ModelSettings(cfg)
	var labels []string
	for _, sig := range language.Signatures() {
		labels = append(labels, sig.Name)
	}
	return CoreVersions{
		Versions: Versions{
			Version:       CoreVersion,
			GolangVersion: GolangVersion,
			BuildTime:     BuildTime,
		},
		Model: ModelMeta{
			Name:     settings.Name,
			Endpoint: settings.Endpoint,
		},
		Languages: labels,
	}
}

// printVersionInfo prints the version information for the core application and the model.
func printVersionInfo(w io.Writer, versions CoreVersions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(versions)
	}
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Versions.Version)
	fmt.Fprintf(w, "Model: %s (%s)\n", versions.Model.Name, versions.Model.Endpoint)
	fmt.Fprintf(w, "Languages: %d\n", len(versions.Languages))
	fmt.Fprintf(w, "Go Version: %s\n", versions.Versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.Versions.BuildTime)
	return nil
}
