package sessions

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const safariIPhone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"

func TestDeviceInfoFromRequest_Desktop(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.Header.Set("User-Agent", chromeMac)
	r.RemoteAddr = "192.0.2.10:51234"

	info := DeviceInfoFromRequest(r)

	assert.Equal(t, "Chrome - 120.0.0.0", info.UserAgent)
	assert.Equal(t, "desktop", info.DeviceType)
	assert.Contains(t, info.DeviceName, " - Chrome")
	assert.Equal(t, "192.0.2.10", info.IPAddress)
}

func TestDeviceInfoFromRequest_Mobile(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("User-Agent", safariIPhone)

	assert.Equal(t, "mobile", DeviceInfoFromRequest(r).DeviceType)
}

func TestDeviceInfoFromRequest_ForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	r.RemoteAddr = "10.0.0.1:80"

	assert.Equal(t, "203.0.113.5", DeviceInfoFromRequest(r).IPAddress)
}

func TestDeviceInfoFromRequest_NoAddress(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = ""

	info := DeviceInfoFromRequest(r)
	assert.Equal(t, "Unknown", info.IPAddress)
	assert.Equal(t, "desktop", info.DeviceType)
	assert.Contains(t, info.DeviceName, "Unknown")
}
