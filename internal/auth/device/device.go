package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent renders a short "Browser on OS" label for session listings.
func ParseUserAgent(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownDevice
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := strings.TrimSpace(ua.OSInfo().Name)
	if platform == "" {
		platform = strings.TrimSpace(ua.Platform())
	}
	if ua.Mobile() && strings.Contains(userAgent, "iPhone") {
		platform = "iPhone"
	}
	if platform == "" {
		platform = "Unknown OS"
	}

	return browser + " on " + platform
}
