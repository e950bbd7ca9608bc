package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"trade-journal/internal/domain/journal"

	"github.com/google/uuid"
)

// TradeRepo 記憶體版交易紀錄。
type TradeRepo struct {
	mu     sync.RWMutex
	trades map[string]journal.Trade
}

func NewTradeRepo() *TradeRepo {
	return &TradeRepo{trades: make(map[string]journal.Trade)}
}

// Insert 未帶 ID 時產生 uuid。
func (r *TradeRepo) Insert(ctx context.Context, t journal.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.trades[t.ID] = t
	return nil
}

func (r *TradeRepo) Update(ctx context.Context, t journal.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.trades[t.ID]
	if !ok || cur.UserID != t.UserID {
		return journal.ErrTradeNotFound
	}
	r.trades[t.ID] = t
	return nil
}

func (r *TradeRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.trades[id]
	if !ok || cur.UserID != userID {
		return journal.ErrTradeNotFound
	}
	delete(r.trades, id)
	return nil
}

func (r *TradeRepo) Get(ctx context.Context, id string) (journal.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trades[id]
	if !ok {
		return journal.Trade{}, journal.ErrTradeNotFound
	}
	return t, nil
}

// List 依交易日期、建立時間遞增排序，與資料庫版本一致。
func (r *TradeRepo) List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error) {
	r.mu.RLock()
	out := make([]journal.Trade, 0, len(r.trades))
	for _, t := range r.trades {
		if matches(t, filter) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(t journal.Trade, f journal.Filter) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.Pair != "" && !strings.EqualFold(t.Pair, f.Pair) {
		return false
	}
	if f.MarketCondition != "" && t.MarketCondition != f.MarketCondition {
		return false
	}
	from, until := f.DateBounds()
	if from != nil && t.Date.Before(*from) {
		return false
	}
	if until != nil && !t.Date.Before(*until) {
		return false
	}
	return true
}
