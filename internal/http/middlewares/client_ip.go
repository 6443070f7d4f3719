package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ClientIPResolver finds the caller address of a request. X-Forwarded-For is
// read only when the direct peer is a trusted proxy, right to left, stopping
// at the first hop that is not itself trusted.
type ClientIPResolver struct {
	trusted []*net.IPNet
}

// NewClientIPResolver accepts CIDRs or bare addresses. With none, the header
// is never read.
func NewClientIPResolver(proxies []string) (*ClientIPResolver, error) {
	res := &ClientIPResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q: not an IP or CIDR", p)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			res.trusted = append(res.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		res.trusted = append(res.trusted, n)
	}
	return res, nil
}

func (c *ClientIPResolver) trusts(ip net.IP) bool {
	if c == nil || ip == nil {
		return false
	}
	for _, n := range c.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve returns the address requests of r are attributed to.
func (c *ClientIPResolver) Resolve(r *http.Request) string {
	peer := remoteHost(r)
	if !c.trusts(net.ParseIP(peer)) {
		return peer
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(v, ",")...)
	}
	addr := peer
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		addr = ip.String()
		if !c.trusts(ip) {
			break
		}
	}
	return addr
}

// WithClientIP resolves the caller address once and stores it for the rate
// limiter and the access log.
func WithClientIP(c *ClientIPResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(setClientIP(r.Context(), c.Resolve(r))))
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// clientIP is the address stored by WithClientIP, or the direct peer.
func clientIP(r *http.Request) string {
	if ip := GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return remoteHost(r)
}
