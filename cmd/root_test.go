package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", fmt.Errorf("boom"), 1},
		{"command error", errors.NewCommandError(fmt.Errorf("mismatch"), 2), 2},
		{"wrapped command error", fmt.Errorf("run: %w", errors.NewCommandError(fmt.Errorf("x"), 2)), 2},
		{"zero exit code", errors.NewCommandError(fmt.Errorf("x"), 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"version", "analyse", "detect", "fix", "serve"}, names)
}
