package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-journal/internal/domain/journal"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    pair             TEXT NOT NULL DEFAULT '',
    trade_date       TEXT NOT NULL,
    day              TEXT NOT NULL DEFAULT '',
    action           TEXT NOT NULL,
    direction        TEXT NOT NULL DEFAULT '',
    market_condition TEXT NOT NULL DEFAULT '',
    entry_price      REAL NOT NULL DEFAULT 0,
    exit_price       REAL NOT NULL DEFAULT 0,
    lot_size         REAL NOT NULL DEFAULT 0,
    profit_loss      REAL NOT NULL DEFAULT 0,
    pivots           TEXT NOT NULL DEFAULT '',
    banking_level    TEXT NOT NULL DEFAULT '',
    ma               TEXT NOT NULL DEFAULT '',
    fib              TEXT NOT NULL DEFAULT '',
    top_bob_fv       TEXT NOT NULL DEFAULT '',
    notes            TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, trade_date);
`

// 固定寬度的 UTC 時間字串，字典序即時間序。
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// TradeRepo 單機版交易紀錄，純 Go 的 SQLite。
type TradeRepo struct {
	db *sql.DB
}

// NewTradeRepo 套用 schema 後回傳 repo。
func NewTradeRepo(ctx context.Context, db *sql.DB) (*TradeRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &TradeRepo{db: db}, nil
}

// Open 開啟（或建立）指定路徑的資料庫。
func Open(ctx context.Context, path string) (*TradeRepo, *sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	repo, err := NewTradeRepo(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}

const columns = `id, user_id, pair, trade_date, day, action, direction, market_condition,
entry_price, exit_price, lot_size, profit_loss, pivots, banking_level, ma, fib, top_bob_fv, notes,
created_at, updated_at`

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (r *TradeRepo) Insert(ctx context.Context, t journal.Trade) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	q := `INSERT INTO trades (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserID, t.Pair, formatTime(t.Date), t.Day, string(t.Action), string(t.Direction), t.MarketCondition,
		t.EntryPrice, t.ExitPrice, t.LotSize, t.ProfitLoss, t.Pivots, t.BankingLevel, t.MA, t.Fib, t.TopBobFv, t.Notes,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert trade %s: %w", t.ID, err)
	}
	return nil
}

func (r *TradeRepo) Update(ctx context.Context, t journal.Trade) error {
	const q = `
UPDATE trades SET pair = ?, trade_date = ?, day = ?, action = ?, direction = ?, market_condition = ?,
entry_price = ?, exit_price = ?, lot_size = ?, profit_loss = ?, pivots = ?, banking_level = ?,
ma = ?, fib = ?, top_bob_fv = ?, notes = ?, updated_at = ?
WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.Pair, formatTime(t.Date), t.Day, string(t.Action), string(t.Direction), t.MarketCondition,
		t.EntryPrice, t.ExitPrice, t.LotSize, t.ProfitLoss, t.Pivots, t.BankingLevel, t.MA, t.Fib, t.TopBobFv, t.Notes,
		formatTime(t.UpdatedAt), t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update trade %s: %w", t.ID, err)
	}
	return affectedOne(res)
}

func (r *TradeRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("sqlite: delete trade %s: %w", id, err)
	}
	return affectedOne(res)
}

func (r *TradeRepo) Get(ctx context.Context, id string) (journal.Trade, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM trades WHERE id = ?`, id)
	t, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Trade{}, journal.ErrTradeNotFound
	}
	return t, err
}

// List 依交易日、建立時間遞增排序。
func (r *TradeRepo) List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error) {
	where := []string{"user_id = ?"}
	args := []any{filter.UserID}
	if filter.Pair != "" {
		where = append(where, "pair = ?")
		args = append(args, filter.Pair)
	}
	if filter.MarketCondition != "" {
		where = append(where, "market_condition = ?")
		args = append(args, filter.MarketCondition)
	}
	from, until := filter.DateBounds()
	if from != nil {
		where = append(where, "trade_date >= ?")
		args = append(args, formatTime(*from))
	}
	if until != nil {
		where = append(where, "trade_date < ?")
		args = append(args, formatTime(*until))
	}
	q := `SELECT ` + columns + ` FROM trades WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY trade_date ASC, created_at ASC, id ASC`
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list trades: %w", err)
	}
	defer rows.Close()

	var out []journal.Trade
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (journal.Trade, error) {
	var (
		t                      journal.Trade
		action, direction      string
		date, created, updated string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Pair, &date, &t.Day, &action, &direction, &t.MarketCondition,
		&t.EntryPrice, &t.ExitPrice, &t.LotSize, &t.ProfitLoss, &t.Pivots, &t.BankingLevel, &t.MA, &t.Fib, &t.TopBobFv, &t.Notes,
		&created, &updated,
	)
	if err != nil {
		return journal.Trade{}, err
	}
	t.Action = journal.Action(action)
	t.Direction = journal.Direction(direction)
	t.Date, _ = time.Parse(timeLayout, date)
	t.CreatedAt, _ = time.Parse(timeLayout, created)
	t.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return t, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return journal.ErrTradeNotFound
	}
	return nil
}
