package cli

import (
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfig(t *testing.T) {
	appName := "Test App"
	config := createFiberConfig(appName, nil)

	// AppName should always be set correctly
	assert.Equal(t, appName, config.AppName, "AppName should match input")
	assert.False(t, config.TrustProxy)
	assert.Empty(t, config.ProxyHeader)
}

func TestCreateFiberConfigTrustsProxies(t *testing.T) {
	config := createFiberConfig("VidPulse", []string{"10.0.0.1"})

	assert.True(t, config.TrustProxy)
	assert.Equal(t, []string{"10.0.0.1"}, config.TrustProxyConfig.Proxies)
	assert.Equal(t, fiber.HeaderXForwardedFor, config.ProxyHeader)
}

func TestCreateFiberConfigAppNameFormat(t *testing.T) {
	tests := []struct {
		name     string
		appName  string
		expected string
	}{
		{
			name:     "simple name",
			appName:  "VidPulse",
			expected: "VidPulse",
		},
		{
			name:     "name with version",
			appName:  "VidPulse v1.0.0",
			expected: "VidPulse v1.0.0",
		},
		{
			name:     "empty name",
			appName:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createFiberConfig(tt.appName, nil)
			assert.Equal(t, tt.expected, config.AppName)
		})
	}
}
