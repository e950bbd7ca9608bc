package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	analyticsApp "trade-journal/internal/application/analytics"
	analyticsDomain "trade-journal/internal/domain/analytics"
	"trade-journal/internal/domain/journal"
	"trade-journal/internal/infrastructure/config"
	"trade-journal/internal/infrastructure/db"
	"trade-journal/internal/infrastructure/persistence/postgres"
	"trade-journal/internal/infrastructure/persistence/sqlite"

	"github.com/olekukonko/tablewriter"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	file := flag.String("file", "", "read trades from a JSON file instead of the database")
	userID := flag.String("user", "", "user id whose trades are reported (database mode)")
	month := flag.Int("month", 0, "month filter 1-12")
	year := flag.Int("year", 0, "year filter")
	condition := flag.String("condition", "", "market condition filter")
	split := flag.Bool("split", false, "split confluence combinations by market condition")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trades, err := loadTrades(ctx, *cfgPath, *file, *userID)
	if err != nil {
		log.Fatalf("load trades failed: %v", err)
	}

	opts := analyticsDomain.Options{
		Month:            *month,
		Year:             *year,
		MarketCondition:  *condition,
		SplitByCondition: *split,
	}
	if err := render(os.Stdout, trades, opts); err != nil {
		log.Fatalf("render report failed: %v", err)
	}
}

// fileTrade 匯入檔的交易格式，date 為 YYYY-MM-DD。
type fileTrade struct {
	Pair            string  `json:"pair"`
	Date            string  `json:"date"`
	Day             string  `json:"day"`
	Action          string  `json:"action"`
	Direction       string  `json:"direction"`
	MarketCondition string  `json:"market_condition"`
	ProfitLoss      float64 `json:"profit_loss"`
	Pivots          string  `json:"pivots"`
	BankingLevel    string  `json:"banking_level"`
	MA              string  `json:"ma"`
	Fib             string  `json:"fib"`
	TopBobFv        string  `json:"top_bob_fv"`
}

func loadTrades(ctx context.Context, cfgPath, file, userID string) ([]journal.Trade, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return decodeTrades(f)
	}

	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("-user is required when reading from the database")
	}
	conn, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("no database configured; use -file")
	}
	defer conn.Close()

	repo, err := tradeLister(ctx, cfg.DB.Driver, conn)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, journal.Filter{UserID: userID})
}

type lister interface {
	List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error)
}

func tradeLister(ctx context.Context, driver string, conn *sql.DB) (lister, error) {
	if driver == config.DriverSQLite {
		return sqlite.NewTradeRepo(ctx, conn)
	}
	return postgres.NewTradeRepo(conn), nil
}

func decodeTrades(r io.Reader) ([]journal.Trade, error) {
	var raw []fileTrade
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	out := make([]journal.Trade, 0, len(raw))
	for i, ft := range raw {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(ft.Date))
		if err != nil {
			return nil, fmt.Errorf("trade %d: invalid date %q", i, ft.Date)
		}
		out = append(out, journal.Trade{
			Pair:            ft.Pair,
			Date:            date,
			Day:             ft.Day,
			Action:          journal.Action(ft.Action),
			Direction:       journal.Direction(ft.Direction),
			MarketCondition: ft.MarketCondition,
			ProfitLoss:      ft.ProfitLoss,
			Pivots:          ft.Pivots,
			BankingLevel:    ft.BankingLevel,
			MA:              ft.MA,
			Fib:             ft.Fib,
			TopBobFv:        ft.TopBobFv,
		}.Normalize())
	}
	return out, nil
}

var dimensionTitles = map[analyticsDomain.Dimension]string{
	analyticsDomain.DimensionMarketCondition:       "Market Condition",
	analyticsDomain.DimensionDay:                   "Day of Week",
	analyticsDomain.DimensionTrend:                 "Trend Alignment",
	analyticsDomain.DimensionConfluenceCount:       "Confluence Count",
	analyticsDomain.DimensionConfluenceCombination: "Top Confluence Combinations",
}

// render 印出整體績效與每個維度的分組表。
func render(w io.Writer, trades []journal.Trade, opts analyticsDomain.Options) error {
	ov, err := analyticsApp.Overview(trades, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nOverview: %d trades | win rate %.0f%% | P/L %.2f | profit factor %.2f | streak %d\n",
		ov.Total, ov.WinRate, ov.ProfitLoss, ov.ProfitFactor, ov.Streak)

	for _, dim := range analyticsDomain.Dimensions {
		rows, err := analyticsApp.Summarize(dim, trades, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s\n", dimensionTitles[dim])

		withAvg := dim == analyticsDomain.DimensionConfluenceCount || dim == analyticsDomain.DimensionConfluenceCombination
		table := tablewriter.NewWriter(w)
		if withAvg {
			table.Header("Group", "Total", "W", "L", "BE", "Win %", "P/L", "Avg P/L")
		} else {
			table.Header("Group", "Total", "W", "L", "BE", "Win %", "P/L")
		}
		for _, r := range rows {
			cells := []string{
				r.GroupKey,
				fmt.Sprintf("%d", r.Total),
				fmt.Sprintf("%d", r.Wins),
				fmt.Sprintf("%d", r.Losses),
				fmt.Sprintf("%d", r.Breakeven),
				fmt.Sprintf("%.0f", r.WinRate),
				fmt.Sprintf("%.2f", r.ProfitLoss),
			}
			if withAvg {
				avg := "-"
				if r.AvgProfitLoss != nil {
					avg = fmt.Sprintf("%.2f", *r.AvgProfitLoss)
				}
				cells = append(cells, avg)
			}
			table.Append(cells)
		}
		table.Render()
	}
	return nil
}
