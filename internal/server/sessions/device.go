package sessions

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "Unknown"

// DeviceInfo is the client metadata recorded with a session.
type DeviceInfo struct {
	UserAgent  string
	IPAddress  string
	DeviceName string
	DeviceType string
}

// DeviceInfoFromRequest derives device metadata from the User-Agent header
// and the client address.
func DeviceInfoFromRequest(r *http.Request) DeviceInfo {
	raw := r.UserAgent()
	if raw == "" {
		raw = unknown
	}
	ua := useragent.New(raw)

	browser, version := ua.Browser()
	os := ua.OSInfo()

	osName := os.Name
	if osName == "" {
		osName = "Unknown OS"
	}
	if browser == "" {
		browser = "Unknown Client"
	}

	return DeviceInfo{
		UserAgent:  browser + " - " + version,
		IPAddress:  ClientIP(r),
		DeviceName: osName + " " + os.Version + " - " + browser,
		DeviceType: deviceType(ua),
	}
}

func deviceType(ua *useragent.UserAgent) string {
	switch {
	case ua.Bot():
		return "bot"
	case strings.Contains(ua.Platform(), "iPad") || strings.Contains(ua.UA(), "Tablet"):
		return "tablet"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}

// ClientIP prefers the first X-Forwarded-For entry over the socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if r.RemoteAddr == "" {
		return unknown
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
