package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration. X-Forwarded-For is only
// honoured when it comes from one of the trusted proxies.
func createFiberConfig(appName string, trustedProxies []string) fiber.Config {
	cfg := fiber.Config{
		AppName: appName,
	}
	if len(trustedProxies) > 0 {
		cfg.TrustProxy = true
		cfg.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: trustedProxies}
		cfg.ProxyHeader = fiber.HeaderXForwardedFor
	}
	return cfg
}
