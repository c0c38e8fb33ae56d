package httpclient

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/codeshield-io/codeshield/pkg/shared/config"
)

func TestApplyHTTPClientConfigDefaults(t *testing.T) {
	got := applyHTTPClientConfig(nil)
	want := config.DefaultRestyConfig()

	assert.Equal(t, want.RetryCount, got.RetryCount)
	assert.Equal(t, want.Timeout, got.Timeout)
	assert.False(t, got.TLSClientConfig.InsecureSkipVerify)
	assert.Empty(t, got.Proxy)
}

func TestApplyHTTPClientConfigOverrides(t *testing.T) {
	verify := false
	debug := true
	got := applyHTTPClientConfig(&config.HTTPClient{
		Debug:           &debug,
		RetryCount:      3,
		Timeout:         15 * time.Second,
		TLSClientConfig: config.TLSClientConfig{Verify: &verify},
		Proxy:           config.Proxy{Host: "http://proxy.local", Port: 3128},
	})

	assert.True(t, got.Debug)
	assert.Equal(t, 3, got.RetryCount)
	assert.Equal(t, 15*time.Second, got.Timeout)
	assert.True(t, got.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, "http://proxy.local:3128", got.Proxy)
}

func TestInitializeRestyClient(t *testing.T) {
	client := InitializeRestyClient(hclog.NewNullLogger(), &config.Config{
		HTTPClient: config.HTTPClient{Timeout: 5 * time.Second},
	})
	assert.NotNil(t, client)
	assert.Equal(t, 0, client.RetryCount)
}
