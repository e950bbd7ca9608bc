package reports

import (
	"context"
	"log"
	"sync"
	"time"

	authDomain "trade-journal/internal/domain/auth"
)

// MessageSender 推送文字訊息，例如 Telegram。
type MessageSender interface {
	SendMessage(ctx context.Context, text string) error
}

// RecipientLister 找出需要摘要的帳號。
type RecipientLister interface {
	FindByRole(ctx context.Context, role authDomain.Role) ([]authDomain.User, error)
}

// DigestWorker 定期把管理員的當月績效摘要推送出去。
type DigestWorker struct {
	reports  *UseCase
	users    RecipientLister
	sender   MessageSender
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewDigestWorker 建立摘要推送背景工作。
func NewDigestWorker(reports *UseCase, users RecipientLister, sender MessageSender, interval time.Duration) *DigestWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &DigestWorker{
		reports:  reports,
		users:    users,
		sender:   sender,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 啟動迴圈，啟動後立即推送一次。
func (w *DigestWorker) Start() {
	log.Printf("[Digest] starting digest worker interval=%v", w.interval)
	ticker := time.NewTicker(w.interval)
	go func() {
		w.RunOnce(context.Background())
		for {
			select {
			case <-ticker.C:
				w.RunOnce(context.Background())
			case <-w.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop 停止迴圈，可重複呼叫。
func (w *DigestWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// RunOnce 回傳成功推送的則數。
func (w *DigestWorker) RunOnce(ctx context.Context) int {
	admins, err := w.users.FindByRole(ctx, authDomain.RoleAdmin)
	if err != nil {
		log.Printf("[Digest] list recipients failed: %v", err)
		return 0
	}
	sent := 0
	for _, u := range admins {
		if !u.IsActive() {
			continue
		}
		text, err := w.reports.BuildDigest(ctx, u.ID)
		if err != nil {
			log.Printf("[Digest] build digest failed user_id=%s err=%v", u.ID, err)
			continue
		}
		if err := w.sender.SendMessage(ctx, text); err != nil {
			log.Printf("[Digest] send failed user_id=%s err=%v", u.ID, err)
			continue
		}
		sent++
	}
	return sent
}
