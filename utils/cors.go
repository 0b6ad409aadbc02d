package utils

import (
	"net/netip"
	"net/url"
	"strings"
)

var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

// IsAllowedOrigin reports whether a browser origin is on the local network:
// localhost, private or link-local IPs, .local names and single-label hosts.
// Displays run on the LAN; public origins are refused.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := parsed.Hostname()

	switch {
	case host == "localhost", strings.HasSuffix(host, ".local"):
		return true
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return isPrivateAddr(addr)
	}

	// Single-label names resolve on the LAN only.
	return !strings.Contains(host, ".")
}

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range privatePrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
