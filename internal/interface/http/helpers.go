package httpapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	analyticsDomain "trade-journal/internal/domain/analytics"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func (s *Server) setRefreshCookie(c *gin.Context, token string, expiry time.Time) {
	host, _, _ := strings.Cut(c.Request.Host, ":")
	isLocal := host == "localhost" || host == "127.0.0.1"

	c.SetCookie(
		refreshCookieName,
		token,
		int(time.Until(expiry).Seconds()),
		"/api/auth",
		"",
		!isLocal,
		true,
	)
}

func parseBearer(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentUserID(c *gin.Context) string {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// parseDate 接受 2006-01-02 或 RFC3339。
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return t, nil
}

func parseOptionalDate(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &t, nil
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseBoolDefault(s string, def bool) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// parseAnalyticsOptions 讀取分析查詢的共用參數。
func parseAnalyticsOptions(c *gin.Context) (analyticsDomain.Options, error) {
	var opts analyticsDomain.Options
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid month")
		}
		opts.Month = m
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid year")
		}
		opts.Year = y
	}
	from, err := parseOptionalDate(c, "start_date")
	if err != nil {
		return opts, err
	}
	to, err := parseOptionalDate(c, "end_date")
	if err != nil {
		return opts, err
	}
	opts.From, opts.To = from, to
	opts.MarketCondition = strings.TrimSpace(c.Query("market_condition"))
	opts.SplitByCondition = parseBoolDefault(c.Query("split_by_condition"), false)
	opts.KeyByType = parseBoolDefault(c.Query("key_by_type"), false)
	return opts, nil
}
