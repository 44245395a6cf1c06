package httpkit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// UnknownClientIP is the shared bucket for requests without proxy headers.
const UnknownClientIP = "unknown"

// ClientIP resolves the caller address from the proxy headers: the first
// X-Forwarded-For entry, then X-Real-IP, then UnknownClientIP.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownClientIP
}

// retryAfterHeader renders d in whole seconds, rounded up, minimum one.
func retryAfterHeader(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
