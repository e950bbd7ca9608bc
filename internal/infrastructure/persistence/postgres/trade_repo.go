package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trade-journal/internal/domain/journal"

	"github.com/google/uuid"
)

// TradeRepo 交易紀錄的 Postgres 實作。
type TradeRepo struct {
	db *sql.DB
}

// NewTradeRepo 建立 TradeRepo。
func NewTradeRepo(db *sql.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

const tradeColumns = `id, user_id, pair, trade_date, day, action, direction, market_condition,
entry_price, exit_price, lot_size, profit_loss, pivots, banking_level, ma, fib, top_bob_fv, notes,
created_at, updated_at`

// Insert 新增一筆交易，未帶 ID 時自動產生。
func (r *TradeRepo) Insert(ctx context.Context, t journal.Trade) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	q := `INSERT INTO trades (` + tradeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);`
	if _, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserID, t.Pair, t.Date, t.Day, string(t.Action), string(t.Direction), t.MarketCondition,
		t.EntryPrice, t.ExitPrice, t.LotSize, t.ProfitLoss, t.Pivots, t.BankingLevel, t.MA, t.Fib, t.TopBobFv, t.Notes,
		t.CreatedAt, t.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// Update 覆寫交易內容，只會更新同一使用者的紀錄。
func (r *TradeRepo) Update(ctx context.Context, t journal.Trade) error {
	const q = `
UPDATE trades SET pair = $3, trade_date = $4, day = $5, action = $6, direction = $7, market_condition = $8,
entry_price = $9, exit_price = $10, lot_size = $11, profit_loss = $12, pivots = $13, banking_level = $14,
ma = $15, fib = $16, top_bob_fv = $17, notes = $18, updated_at = $19
WHERE id = $1 AND user_id = $2;
`
	res, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserID, t.Pair, t.Date, t.Day, string(t.Action), string(t.Direction), t.MarketCondition,
		t.EntryPrice, t.ExitPrice, t.LotSize, t.ProfitLoss, t.Pivots, t.BankingLevel, t.MA, t.Fib, t.TopBobFv, t.Notes,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update trade: %w", err)
	}
	return expectOneRow(res)
}

// Delete 刪除使用者自己的交易。
func (r *TradeRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	return expectOneRow(res)
}

// Get 依 ID 取得交易。
func (r *TradeRepo) Get(ctx context.Context, id string) (journal.Trade, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1;`
	t, err := scanTrade(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Trade{}, journal.ErrTradeNotFound
	}
	if err != nil {
		return journal.Trade{}, fmt.Errorf("get trade: %w", err)
	}
	return t, nil
}

// List 依篩選條件查詢，依交易日、建立時間遞增排序。
func (r *TradeRepo) List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error) {
	where := []string{"user_id = $1"}
	args := []any{filter.UserID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Pair != "" {
		add("pair = $%d", filter.Pair)
	}
	if filter.MarketCondition != "" {
		add("market_condition = $%d", filter.MarketCondition)
	}
	from, until := filter.DateBounds()
	if from != nil {
		add("trade_date >= $%d", *from)
	}
	if until != nil {
		add("trade_date < $%d", *until)
	}

	q := `SELECT ` + tradeColumns + ` FROM trades WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY trade_date ASC, created_at ASC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var out []journal.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrade(row rowScanner) (journal.Trade, error) {
	var (
		t         journal.Trade
		action    string
		direction string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Pair, &t.Date, &t.Day, &action, &direction, &t.MarketCondition,
		&t.EntryPrice, &t.ExitPrice, &t.LotSize, &t.ProfitLoss, &t.Pivots, &t.BankingLevel, &t.MA, &t.Fib, &t.TopBobFv, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return journal.Trade{}, err
	}
	t.Action = journal.Action(action)
	t.Direction = journal.Direction(direction)
	return t, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return journal.ErrTradeNotFound
	}
	return nil
}
