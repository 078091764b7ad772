package netcheck

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// AllowList is a parsed set of exact addresses and CIDR prefixes.
type AllowList struct {
	addrs    []netip.Addr
	prefixes []netip.Prefix
}

// ParseAllowList reads a comma-separated list of addresses and CIDR blocks.
// Malformed entries are skipped so one typo cannot disable the whole list.
func ParseAllowList(raw string) AllowList {
	var l AllowList
	for _, entry := range splitList(raw) {
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				l.prefixes = append(l.prefixes, p.Masked())
			}
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			l.addrs = append(l.addrs, a.Unmap())
		}
	}
	return l
}

// Empty reports whether no usable entry was configured.
func (l AllowList) Empty() bool {
	return len(l.addrs) == 0 && len(l.prefixes) == 0
}

// Contains reports whether client matches an exact entry or falls inside a prefix.
// An empty list never matches.
func (l AllowList) Contains(client string) bool {
	ip, ok := parseClientAddr(client)
	if !ok {
		return false
	}
	for _, a := range l.addrs {
		if a == ip {
			return true
		}
	}
	for _, p := range l.prefixes {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// ParseRouterList reads router entries. CIDR entries are used as-is, a bare IPv4 router
// address stands for its /24, and a bare IPv6 address only matches itself.
func ParseRouterList(raw string) AllowList {
	var l AllowList
	for _, entry := range splitList(raw) {
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				l.prefixes = append(l.prefixes, p.Masked())
			}
			continue
		}
		a, err := netip.ParseAddr(entry)
		if err != nil {
			continue
		}
		a = a.Unmap()
		if a.Is4() {
			l.prefixes = append(l.prefixes, netip.PrefixFrom(a, 24).Masked())
		} else {
			l.addrs = append(l.addrs, a)
		}
	}
	return l
}

// ClientIP resolves the caller address: first X-Forwarded-For entry, then X-Real-IP,
// then the transport peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		return xr
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// parseClientAddr accepts "ip", "ipv4:port" and "[ipv6]:port".
func parseClientAddr(client string) (netip.Addr, bool) {
	client = strings.TrimSpace(client)
	if client == "" {
		return netip.Addr{}, false
	}
	if strings.Count(client, ":") == 1 || strings.HasPrefix(client, "[") {
		if host, _, err := net.SplitHostPort(client); err == nil {
			client = host
		}
	}
	a, err := netip.ParseAddr(client)
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
