package journal

import (
	"context"
	"fmt"
	"log"
	"time"

	"trade-journal/internal/domain/journal"

	"github.com/google/uuid"
)

// Repository 交易紀錄存取。
type Repository interface {
	Insert(ctx context.Context, t journal.Trade) error
	Update(ctx context.Context, t journal.Trade) error
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, id string) (journal.Trade, error)
	List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error)
}

// UseCase 交易日誌的新增、修改、刪除與查詢，只允許操作自己的紀錄。
type UseCase struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// NewUseCase 建立交易日誌用例。
func NewUseCase(repo Repository) *UseCase {
	return &UseCase{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create 新增交易；Day 未填時依日期推算。
func (u *UseCase) Create(ctx context.Context, userID string, t journal.Trade) (journal.Trade, error) {
	now := u.now().UTC()
	t.ID = u.newID()
	t.UserID = userID
	t.CreatedAt = now
	t.UpdatedAt = now
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return journal.Trade{}, err
	}
	if err := u.repo.Insert(ctx, t); err != nil {
		return journal.Trade{}, fmt.Errorf("insert trade: %w", err)
	}
	log.Printf("trade created id=%s user_id=%s pair=%s pl=%.2f", t.ID, userID, t.Pair, t.ProfitLoss)
	return t, nil
}

// Update 覆寫整筆交易，保留原建立時間。
func (u *UseCase) Update(ctx context.Context, userID, id string, t journal.Trade) (journal.Trade, error) {
	existing, err := u.Get(ctx, userID, id)
	if err != nil {
		return journal.Trade{}, err
	}
	t.ID = existing.ID
	t.UserID = existing.UserID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = u.now().UTC()
	if t.Day == existing.Day && !journal.DateOnly(t.Date).Equal(existing.Date) {
		t.Day = ""
	}
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return journal.Trade{}, err
	}
	if err := u.repo.Update(ctx, t); err != nil {
		return journal.Trade{}, fmt.Errorf("update trade: %w", err)
	}
	return t, nil
}

// Delete 刪除自己的交易。
func (u *UseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := u.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	log.Printf("trade deleted id=%s user_id=%s", id, userID)
	return nil
}

// Get 取得單筆交易，非本人的紀錄視為不存在。
func (u *UseCase) Get(ctx context.Context, userID, id string) (journal.Trade, error) {
	t, err := u.repo.Get(ctx, id)
	if err != nil {
		return journal.Trade{}, err
	}
	if t.UserID != userID {
		return journal.Trade{}, journal.ErrTradeNotFound
	}
	return t, nil
}

// List 依篩選條件列出使用者的交易。
func (u *UseCase) List(ctx context.Context, filter journal.Filter) ([]journal.Trade, error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", journal.ErrInvalidTrade)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: from must not be after to", journal.ErrInvalidTrade)
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	filter.Pair = normalizePair(filter.Pair)
	return u.repo.List(ctx, filter)
}

func normalizePair(p string) string {
	return journal.Trade{Pair: p}.Normalize().Pair
}
