package shared

import (
	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag of the set was given on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) {
		changed = true
	})
	return changed
}

// StringPtrIfSet returns nil for an empty value so optional flags keep their absent state.
func StringPtrIfSet(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
