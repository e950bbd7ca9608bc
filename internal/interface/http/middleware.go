package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"trade-journal/internal/application/auth"
	"trade-journal/internal/infrastructure/trace"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const ctxUserID = "userID"

// requireAuth 驗證 access token（Bearer 或 access_token cookie）並檢查權限。
func (s *Server) requireAuth(perms ...auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := parseBearer(c.GetHeader("Authorization"))
		if token == "" {
			if t, err := c.Cookie("access_token"); err == nil {
				token = t
			}
		}
		if token == "" {
			abortError(c, http.StatusUnauthorized, errCodeUnauthorized, "unauthorized")
			return
		}

		claims, err := s.tokenSvc.ParseAccessToken(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, errCodeUnauthorized, "invalid token")
			return
		}

		res, err := s.authz.Authorize(c.Request.Context(), claims.UserID, perms...)
		if err != nil {
			abortError(c, http.StatusUnauthorized, errCodeUnauthorized, "unknown user")
			return
		}
		if !res.Allowed {
			log.Printf("[Auth] forbidden user_id=%s path=%s reason=%s", claims.UserID, c.FullPath(), res.Reason)
			abortError(c, http.StatusForbidden, errCodeForbidden, "forbidden")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// traceRequests 每個請求開一個 server span，下游用例的 span 掛在其下。
func (s *Server) traceRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.tracer.Enabled() {
			c.Next()
			return
		}
		ctx, span := s.tracer.StartSpan(c.Request.Context(), c.Request.Method+" "+c.Request.URL.Path,
			oteltrace.WithSpanKind(oteltrace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}

func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		traceSuffix := ""
		if traceID, _, ok := trace.TraceFields(c.Request.Context()); ok {
			traceSuffix = " trace_id=" + traceID
		}

		log.Printf("[GIN] %v | %3d | %13v | %-7s %s%s",
			start.Format("2006/01/02 - 15:04:05"),
			c.Writer.Status(),
			time.Since(start),
			c.Request.Method,
			path,
			traceSuffix,
		)
	}
}

// recovery 把 panic 轉成標準錯誤格式。
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[GIN] panic recovered path=%s err=%v", c.Request.URL.Path, recovered)
		abortError(c, http.StatusInternalServerError, errCodeInternal, "an unexpected error occurred")
	})
}

// limiterIdleTTL 超過此時間未出現的 IP 會被移除；桶子一分鐘內就會補滿，移除後重建等價。
const limiterIdleTTL = 3 * time.Minute

// ipRateLimiter 每個來源 IP 一個 token bucket，閒置項目定期清掉。
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*ipLimiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{lim: rate.NewLimiter(l.every, l.burst)}
		l.limiters[ip] = entry
	}
	entry.seen = now
	l.mu.Unlock()
	return entry.lim.AllowN(now, 1)
}

// sweep 需持有 mu。
func (l *ipRateLimiter) sweep(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.seen) >= l.idleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

func (s *Server) rateLimit(l *ipRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(time.Minute.Seconds())/l.burst+1))
			abortError(c, http.StatusTooManyRequests, errCodeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}
