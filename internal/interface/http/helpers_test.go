package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-journal/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{}
	cfg.Auth.Secret = "test-secret"
	s := NewServer(cfg, nil, nil)
	t.Cleanup(s.Close)
	return s
}

func doJSON(s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func loginAs(t *testing.T, s *Server, email string) string {
	t.Helper()
	w := doJSON(s, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s: empty token", email)
	}
	return token
}

func TestParseBearer(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  xyz ": "xyz",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for in, want := range tests {
		if got := parseBearer(in); got != want {
			t.Errorf("parseBearer(%q)=%q want %q", in, got, want)
		}
	}
}

func TestParseAnalyticsOptions(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?month=3&year=2024&market_condition=Trending&start_date=2024-03-01&end_date=2024-03-31&split_by_condition=true&key_by_type=1", nil)

	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Month != 3 || opts.Year != 2024 || opts.MarketCondition != "Trending" || !opts.SplitByCondition || !opts.KeyByType {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.From == nil || opts.From.Format(dateLayout) != "2024-03-01" || opts.To == nil || opts.To.Format(dateLayout) != "2024-03-31" {
		t.Fatalf("unexpected range: %+v %+v", opts.From, opts.To)
	}

	for _, q := range []string{"/?month=x", "/?year=y", "/?start_date=2024/01/01", "/?end_date=soon"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request =httptest.NewRequest(http.MethodGet, q, nil)
		if _, err := parseAnalyticsOptions(c); err == nil {
			t.Errorf("expected error for %s", q)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate("2024-03-04"); err != nil || d.Day() != 4 {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if d, err := parseDate("2024-03-04T10:00:00Z"); err != nil || d.Hour() != 10 {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if _, err := parseDate("04/03/2024"); err == nil {
		t.Fatalf("expected error")
	}
}
