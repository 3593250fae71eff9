package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/config"
	"github.com/seuros/vidpulse/internal/httpx"
	"github.com/seuros/vidpulse/internal/logging"
)

// TrustedOrigins holds the sanitized host[:port] entries allowed to drive a
// dashboard from the browser.
type TrustedOrigins struct {
	hosts map[string]struct{}
}

// NewTrustedOrigins sanitizes domains and drops invalid entries.
func NewTrustedOrigins(domains []string) *TrustedOrigins {
	t := &TrustedOrigins{hosts: make(map[string]struct{}, len(domains))}
	for _, domain := range domains {
		host, err := config.SanitizeTrustedDomain(domain)
		if err != nil {
			logging.L().Warn("ignoring invalid trusted origin", zap.String("origin", domain), zap.Error(err))
			continue
		}
		t.hosts[host] = struct{}{}
	}
	return t
}

// Allows reports whether origin (a full Origin or Referer value) is trusted.
// An entry without a port matches that host on any port.
func (t *TrustedOrigins) Allows(origin string) bool {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	if _, ok := t.hosts[host]; ok {
		return true
	}
	_, ok := t.hosts[strings.ToLower(u.Hostname())]
	return ok
}

// OriginGuard rejects cross-site requests that change dashboard state.
// Safe methods pass unless they upgrade to a websocket. Requests without
// Origin or Referer come from non-browser clients and pass as well.
func OriginGuard(trusted *TrustedOrigins) fiber.Handler {
	return func(c fiber.Ctx) error {
		if isSafeMethod(c.Method()) && !isUpgrade(c) {
			return c.Next()
		}

		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			origin = c.Get(fiber.HeaderReferer)
		}
		if origin == "" || trusted.Allows(origin) {
			return c.Next()
		}

		logging.L().Warn("origin blocked",
			zap.String("origin", origin),
			zap.String("path", c.Path()),
		)
		return httpx.Error(c, fiber.StatusForbidden, "Origin not allowed")
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

func isUpgrade(c fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}
