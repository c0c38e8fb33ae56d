package analyse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/codeshield-io/codeshield/cmd/version"
	"github.com/codeshield-io/codeshield/internal/analysis"
	"github.com/codeshield-io/codeshield/internal/report"
	"github.com/codeshield-io/codeshield/internal/review"
	"github.com/codeshield-io/codeshield/internal/sarif"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatSARIF = "sarif"
	FormatText  = "text"
)

// targetPath returns the snippet location given either as a flag or as the single argument.
func targetPath(options *RunOptionsAnalyse, args []string) string {
	if options.InputFile != "" {
		return options.InputFile
	}
	return args[0]
}

// artifactURI names the analysed file in reports; stdin has no name.
func artifactURI(target string) string {
	if target == "-" {
		return sarif.DefaultArtifactURI
	}
	return filepath.ToSlash(target)
}

func defaultReportName(format string) string {
	switch format {
	case FormatSARIF:
		return "codeshield-report.sarif"
	case FormatText:
		return "codeshield-report.txt"
	default:
		return "codeshield-report.json"
	}
}

// render serializes result. tty is the writer the text report goes to, nil for files.
func render(result analysis.Result, req review.Request, format, uri string, tty io.Writer) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
	case FormatSARIF:
		r, err := sarif.Build(result, req.Code, sarif.Metadata{
			ArtifactURI: uri,
			Version:     version.CoreVersion,
			Language:    req.Language,
		}, nil)
		if err != nil {
			return nil, err
		}
		if err := r.Write(&buf); err != nil {
			return nil, err
		}
		buf.WriteString("\n")
	case FormatText:
		opts := report.Options{}
		if tty != nil {
			opts = report.OptionsFor(tty)
		}
		if err := report.Render(&buf, result, opts); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return buf.Bytes(), nil
}
