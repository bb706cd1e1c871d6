package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/repositories"
)

// SubscriptionWorker sweeps overdue subscriptions in the background.
// Reads apply lazy expiry on their own; the sweep keeps rows honest for
// anything that queries the table directly.
type SubscriptionWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewSubscriptionWorker(db *gorm.DB) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:       db,
		interval: 6 * time.Hour,
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireOverdueSubscriptions(ctx)
}

func (w *SubscriptionWorker) expireOverdueSubscriptions(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Subscription worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SubscriptionWorker) sweep() {
	repo := repositories.NewSubscriptionRepository(w.db)

	expired, err := repo.ExpireOverdue(time.Now())
	if err != nil {
		logger.WorkerLog("subscription", "expire_overdue", err)
		return
	}
	if expired > 0 {
		logger.Info("Marked overdue subscriptions as expired", "count", expired)
	}
}
