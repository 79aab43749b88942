// Package device renders login user agents into display names recorded on
// sessions, so an admin reading a session list can tell devices apart.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// DisplayName extracts a human-readable device name from a User-Agent
// string, in the form "Browser on OS".
func DisplayName(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		if ua.Bot() {
			return "Bot"
		}
		return "Unknown Device"
	}

	os := strings.TrimSpace(ua.OSInfo().Name)
	if os == "" {
		os = strings.TrimSpace(ua.OS())
	}
	if os == "" {
		return browser
	}
	return browser + " on " + os
}
