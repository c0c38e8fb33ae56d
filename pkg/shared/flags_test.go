package shared

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestHasFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("language", "", "")
	flags.Bool("verbose", false, "")

	assert.False(t, HasFlags(flags))

	assert.NoError(t, flags.Parse([]string{"--language", "go"}))
	assert.True(t, HasFlags(flags))
}

func TestStringPtrIfSet(t *testing.T) {
	assert.Nil(t, StringPtrIfSet(""))
	if got := StringPtrIfSet("Python"); assert.NotNil(t, got) {
		assert.Equal(t, "Python", *got)
	}
}
