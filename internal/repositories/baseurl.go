package repositories

import (
	"context"
	"net"
	"strings"
)

const devBackendURL = "http://localhost:8080"

// ResolveBaseURL picks the backend origin. An explicit override wins; a
// loopback host on a port other than 8080 targets a backend on
// localhost:8080; otherwise the result is empty and requests go to the
// origin of the incoming request.
func ResolveBaseURL(override, host, port string) string {
	if override = strings.TrimSpace(override); override != "" {
		return strings.TrimRight(override, "/")
	}

	if isLoopback(host) && port != "" && port != "8080" {
		return devBackendURL
	}

	return ""
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

type originKey struct{}

// WithOrigin attaches the origin of the request being served; it is used as
// the backend base URL when none is configured.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, strings.TrimRight(origin, "/"))
}

func originFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}
