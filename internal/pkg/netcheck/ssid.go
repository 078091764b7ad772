package netcheck

import (
	"net/http"
	"strings"
)

// HeaderClientSSID is the header mobile clients use to declare their Wi-Fi network.
const HeaderClientSSID = "X-Client-SSID"

// ssidHeaders are checked in order on the raw request.
var ssidHeaders = []string{HeaderClientSSID, "ssid", "X-SSID"}

// ResolveSSID picks the claimed network name. An explicit header value handed over by the
// handler wins, then any known header variant on the raw request, then the body value.
// Blank values count as absent; nil means no network name was claimed.
func ResolveSSID(explicit string, headers http.Header, bodySSID *string) *string {
	if v := strings.TrimSpace(explicit); v != "" {
		return &v
	}
	for _, name := range ssidHeaders {
		if v := strings.TrimSpace(headers.Get(name)); v != "" {
			return &v
		}
	}
	if bodySSID != nil {
		if v := strings.TrimSpace(*bodySSID); v != "" {
			return &v
		}
	}
	return nil
}

// SSIDMatcher performs case-insensitive membership against a fixed set of network names.
type SSIDMatcher struct {
	allowed map[string]struct{}
}

func NewSSIDMatcher(names []string) SSIDMatcher {
	m := SSIDMatcher{allowed: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			m.allowed[n] = struct{}{}
		}
	}
	return m
}

// Allowed reports whether ssid is one of the configured names.
func (m SSIDMatcher) Allowed(ssid *string) bool {
	if ssid == nil {
		return false
	}
	_, ok := m.allowed[strings.ToLower(strings.TrimSpace(*ssid))]
	return ok
}
