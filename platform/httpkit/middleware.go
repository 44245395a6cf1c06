// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"naql_backend/platform/config"
	"naql_backend/platform/logger"
	"naql_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// ContextSubjectKey is the gin context key for the authenticated subject.
	ContextSubjectKey = "subject"
	// ContextRolesKey is the gin context key for the caller's roles.
	ContextRolesKey = "roles"
	// ContextRequestIDKey is the gin context key for the request id.
	ContextRequestIDKey = "requestID"

	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"

	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
)

// RequestID assigns every request an id, reusing a sane inbound header, and
// stores it with the client IP on the request context for the logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(HeaderRequestID, id)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		ctx = context.WithValue(ctx, logger.ClientIPKey, ClientIP(c.Request))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs HTTP requests with timing and records them in m.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := ClientIP(c.Request)

		reqLog := log.WithContext(c.Request.Context())
		if status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			reqLog.HTTPError(c.Request.Method, c.Request.URL.Path, status, c.Errors.Last().Err, clientIP)
		}
		reqLog.HTTPRequest(c.Request.Method, c.Request.URL.Path, status, float64(latency.Milliseconds()), clientIP)
		m.HTTPRequest(c.Request.Method, path, strconv.Itoa(status), latency.Seconds())
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// IPRateLimiter is a token bucket per client IP for low-volume admin routes.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{rate: r, burst: burst, log: log}
}

// NewDiagnosticsRateLimiter allows six diagnostics calls a minute per IP.
func NewDiagnosticsRateLimiter(log *logger.Logger) *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(10*time.Second), 3, log)
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return limiter.(*rate.Limiter)
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c.Request)
		reservation := i.getLimiter(ip).Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.Header("Retry-After", retryAfterHeader(delay))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Message: "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// AuthRequired validates HS256 bearer tokens issued for the admin dashboard.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		claims, err := parseAccessClaims(rawToken, cfg)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		subject, _ := claims["sub"].(string)
		if strings.TrimSpace(subject) == "" {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		c.Set(ContextSubjectKey, subject)
		c.Set(ContextRolesKey, extractRoles(claims["roles"]))
		c.Next()
	}
}

// RequireRole returns middleware that checks if the caller has the specified role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := c.Get(ContextRolesKey)
		roleList, _ := roles.([]string)
		for _, item := range roleList {
			if item == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "forbidden"})
	}
}

func extractRoles(value any) []string {
	roles := make([]string, 0)
	switch typed := value.(type) {
	case []string:
		return append(roles, typed...)
	case []any:
		for _, item := range typed {
			if text, ok := item.(string); ok {
				roles = append(roles, text)
			}
		}
	case string:
		roles = append(roles, typed)
	}
	return roles
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}

func parseAccessClaims(rawToken string, cfg config.JWTConfig) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.GetJWTAccessSecret()), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, errors.New(errInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errInvalidToken)
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return nil, errors.New(errInvalidToken)
	}

	return claims, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: message})
}
