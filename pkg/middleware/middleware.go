package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ksred/portfolio-api/internal/auth"
	"github.com/ksred/portfolio-api/pkg/response"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex

	// Limits per endpoint group
	authLimit    = rate.Limit(10.0 / 60.0)  // 10 requests per minute
	accountLimit = rate.Limit(100.0 / 60.0) // 100 requests per minute
	quoteLimit   = rate.Limit(300.0 / 60.0) // 300 requests per minute
)

// Cleanup old visitors periodically
func init() {
	go cleanupVisitors()
}

func getLimiter(path, clientID string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	key := clientID + ":" + path
	v, exists := visitors[key]

	if !exists {
		var limit rate.Limit
		switch {
		case strings.HasPrefix(path, "/api/v1/auth"):
			limit = authLimit
		case strings.HasPrefix(path, "/api/v1/accounts"):
			limit = accountLimit
		case strings.HasPrefix(path, "/api/v1/quote"):
			limit = quoteLimit
		default:
			limit = rate.Inf
		}

		v = &visitor{
			limiter:  rate.NewLimiter(limit, 5),
			lastSeen: time.Now(),
		}
		visitors[key] = v
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

// RateLimit throttles requests per client and endpoint group
func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("client_id")
		if clientID == "" {
			clientID = c.ClientIP()
		}

		limiter := getLimiter(c.FullPath(), clientID)
		if !limiter.Allow() {
			response.BadRequest(c, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// JWTAuth requires a valid bearer token issued by the auth service and
// sets client_id in the request context
func JWTAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, authService)
		if !ok {
			return
		}

		c.Set("client_id", claims.ClientID)
		c.Next()
	}
}

// InternalAuth protects internal endpoints. The deployment fronts these
// with network-level restrictions; the token check is defense in depth
// using the same credential scheme as the public API.
func InternalAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, authService)
		if !ok {
			return
		}

		c.Set("client_id", claims.ClientID)
		c.Next()
	}
}

func validateBearer(c *gin.Context, authService *auth.Service) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		response.Unauthorized(c, "Authorization header required")
		c.Abort()
		return nil, false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		response.Unauthorized(c, "Invalid authorization header format")
		c.Abort()
		return nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		response.Unauthorized(c, "Invalid token")
		c.Abort()
		return nil, false
	}

	return claims, true
}
