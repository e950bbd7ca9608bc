package httpapi

import (
	"net/http"
	"strings"
	"testing"
)

func seedTrades(t *testing.T, s *Server, token string) {
	t.Helper()
	trades := []map[string]any{
		{"date": "2024-03-04", "action": "Buy", "direction": "Bullish", "market_condition": "Trending", "profit_loss": 50, "pivots": "R1", "ma": "200 EMA"},
		{"date": "2024-03-05", "action": "Sell", "direction": "Bullish", "market_condition": "Ranging", "profit_loss": -20, "pivots": "S1"},
		{"date": "2024-03-06", "action": "Sell", "direction": "Bearish", "market_condition": "Trending", "profit_loss": 30},
		{"date": "2024-04-01", "action": "Buy", "direction": "Bullish", "market_condition": "Trending", "profit_loss": 0},
	}
	for _, body := range trades {
		createTrade(t, s, token, body)
	}
}

func TestAnalyticsHandlers(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "trader@example.com")
	seedTrades(t, server, token)

	t.Run("Overview", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/api/analytics/overview?month=3&year=2024", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("overview: %d %s", w.Code, w.Body.String())
		}
		ov, _ := decode(t, w)["overview"].(map[string]any)
		if ov["total"] != float64(3) || ov["wins"] != float64(2) {
			t.Fatalf("unexpected overview: %v", ov)
		}
	})

	t.Run("Trend", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/api/analytics/dimensions/trend", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("trend: %d %s", w.Code, w.Body.String())
		}
		groups, _ := decode(t, w)["groups"].([]any)
		if len(groups) != 2 {
			t.Fatalf("expected with/against trend groups, got %v", groups)
		}
	})

	t.Run("MarketConditionFilter", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/api/analytics/dimensions/day?market_condition=Ranging", token, nil)
		groups, _ := decode(t, w)["groups"].([]any)
		total := 0.0
		for _, g := range groups {
			total += g.(map[string]any)["total"].(float64)
		}
		if total != 1 {
			t.Fatalf("expected only ranging trade, got %v", groups)
		}
	})

	t.Run("UnknownDimension", func(t *testing.T) {
		if w := doJSON(server, http.MethodGet, "/api/analytics/dimensions/moon_phase", token, nil); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		if w := doJSON(server, http.MethodGet, "/api/analytics/overview?month=13", token, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("Dashboard", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/api/analytics/dashboard", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
		}
		dash, _ := decode(t, w)["dashboard"].(map[string]any)
		dims, _ := dash["dimensions"].(map[string]any)
		if len(dims) != 5 {
			t.Fatalf("expected 5 dimensions, got %v", dims)
		}
		if equity, _ := dash["equity"].([]any); len(equity) != 4 {
			t.Fatalf("expected 4 equity points, got %v", dash["equity"])
		}
	})

	t.Run("Equity", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/api/analytics/equity?start_date=2024-03-05", token, nil)
		points, _ := decode(t, w)["equity"].([]any)
		if len(points) != 3 {
			t.Fatalf("expected 3 points, got %v", points)
		}
	})

	t.Run("ExportCSV", func(t *testing.T) {
		w := doJSON(server, http.MethodGet, "/api/analytics/export/confluence_count", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("export: %d %s", w.Code, w.Body.String())
		}
		if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
			t.Fatalf("unexpected content type %s", w.Header().Get("Content-Type"))
		}
		if !strings.HasPrefix(w.Body.String(), "group,total,wins,losses,breakeven,win_rate,profit_loss,avg_profit_loss") {
			t.Fatalf("unexpected csv: %s", w.Body.String())
		}
	})

	t.Run("ViewerCanRead", func(t *testing.T) {
		viewer := loginAs(t, server, "viewer@example.com")
		w := doJSON(server, http.MethodGet, "/api/analytics/overview", viewer, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("viewer overview: %d", w.Code)
		}
		if ov, _ := decode(t, w)["overview"].(map[string]any); ov["total"] != float64(0) {
			t.Fatalf("viewer should only see own trades: %v", ov)
		}
	})
}

func TestAssistantAndCalculatorHandlers(t *testing.T) {
	server := newTestServer(t)
	token := loginAs(t, server, "viewer@example.com")

	w := doJSON(server, http.MethodPost, "/api/assistant/chat", token, map[string]string{"message": "How is my WIN RATE?"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["rule"] != "win_rate" {
		t.Fatalf("unexpected rule: %s", w.Body.String())
	}

	if w = doJSON(server, http.MethodPost, "/api/assistant/chat", token, map[string]string{"message": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", w.Code)
	}
	if w = doJSON(server, http.MethodPost, "/api/assistant/chat", "", map[string]string{"message": "hi"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(server, http.MethodPost, "/api/calculator/compound", "", map[string]any{"start_balance": 1000, "rate_pct": 10, "periods": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("compound: %d %s", w.Code, w.Body.String())
	}
	proj, _ := decode(t, w)["projection"].(map[string]any)
	if proj["final_balance"] != 1210.0 {
		t.Fatalf("unexpected projection: %v", proj)
	}
	if w = doJSON(server, http.MethodPost, "/api/calculator/compound", "", map[string]any{"start_balance": -1, "periods": 2}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
