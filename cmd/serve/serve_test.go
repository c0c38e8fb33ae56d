package serve

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/codeshield-io/codeshield/pkg/shared/config"
)

func TestNewAnalyzerWithoutKey(t *testing.T) {
	cfg := &config.Config{Model: config.Model{APIKeyEnv: "CODESHIELD_SERVE_TEST_KEY"}}
	t.Setenv("CODESHIELD_SERVE_TEST_KEY", "")

	// a typed nil would defeat the server's nil check
	assert.True(t, newAnalyzer(hclog.NewNullLogger(), cfg) == nil)
}

func TestNewAnalyzerWithKey(t *testing.T) {
	cfg := &config.Config{Model: config.Model{APIKeyEnv: "CODESHIELD_SERVE_TEST_KEY"}}
	t.Setenv("CODESHIELD_SERVE_TEST_KEY", "secret")

	assert.NotNil(t, newAnalyzer(hclog.NewNullLogger(), cfg))
}
