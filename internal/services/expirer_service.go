package services

import (
	"context"
	"errors"
	"maps"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ghada-Shaban/LinkUp/internal/mentorship"
	"github.com/Ghada-Shaban/LinkUp/internal/models"
	"github.com/Ghada-Shaban/LinkUp/internal/repository"
)

const (
	DefaultExpirerConcurrency = 4
	defaultExpirerBatchSize   = 500
)

type ExpirerService struct {
	db          *pgxpool.Pool
	notifier    *Notifier
	logger      *zap.Logger
	lifecycle   requestLifecycle
	concurrency int
	batchSize   int
}

func NewExpirerService(db *pgxpool.Pool, notifier *Notifier, logger *zap.Logger, concurrency int) *ExpirerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultExpirerConcurrency
	}
	return &ExpirerService{
		db:          db,
		notifier:    notifier,
		logger:      logger,
		lifecycle:   newRequestLifecycle(DefaultPaymentWindow, time.Now),
		concurrency: concurrency,
		batchSize:   defaultExpirerBatchSize,
	}
}

// ExpireOverduePayments cancels every request whose payment hold ran out and frees
// its pending sessions. Each hold is handled in its own transaction; a failing row is
// logged and skipped. It returns the number of requests cancelled.
func (s *ExpirerService) ExpireOverduePayments(ctx context.Context) (int, error) {
	now := s.lifecycle.now().UTC()
	holdRepo := repository.NewPendingPaymentRepository(s.db)

	var cancelled atomic.Int64
	overdue := 0
	var after int64
	for {
		holds, err := holdRepo.ListOverdue(ctx, now, after, s.batchSize)
		if err != nil {
			return int(cancelled.Load()), err
		}
		if len(holds) == 0 {
			break
		}
		overdue += len(holds)
		after = holds[len(holds)-1].MentorshipRequestID

		s.expireBatch(ctx, holds, now, &cancelled)
		if len(holds) < s.batchSize || ctx.Err() != nil {
			break
		}
	}
	if overdue == 0 {
		return 0, ctx.Err()
	}

	count := int(cancelled.Load())
	s.logger.Info("Expired pending payments",
		zap.Int("overdue", overdue),
		zap.Int("cancelled", count),
	)
	return count, ctx.Err()
}

func (s *ExpirerService) expireBatch(ctx context.Context, holds []models.PendingPayment, now time.Time, cancelled *atomic.Int64) {
	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for _, hold := range holds {
		group.Go(func() error {
			ok, err := s.expireOne(ctx, hold.MentorshipRequestID, now)
			if err != nil {
				s.logger.Error("Failed to expire pending payment",
					zap.Int64("mentorship_request_id", hold.MentorshipRequestID),
					zap.Error(err),
				)
				return nil
			}
			if ok {
				cancelled.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()
}

func (s *ExpirerService) expireOne(ctx context.Context, requestID int64, now time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	req, err := repository.NewMentorshipRequestRepository(tx).GetByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	holdRepo := repository.NewPendingPaymentRepository(tx)
	hold, err := holdRepo.GetForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if !hold.Overdue(now) {
		return false, nil
	}

	if _, err := repository.NewSessionRepository(tx).DeletePendingByRequest(ctx, requestID); err != nil {
		return false, err
	}

	var notes []mentorship.Notify
	cancelled := false
	if req.IsActive() {
		_, notes, err = s.lifecycle.applyStatus(ctx, tx, req, models.RequestStatusCancelled)
		if err != nil {
			return false, err
		}
		cancelled = true
	}

	if err := holdRepo.Delete(ctx, requestID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	for i := range notes {
		payload := maps.Clone(notes[i].Payload)
		if payload == nil {
			payload = map[string]any{}
		}
		payload["reason"] = "payment window expired"
		notes[i].Payload = payload
	}
	s.notifier.Dispatch(ctx, notes)
	return cancelled, nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *ExpirerService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.ExpireOverduePayments(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("Pending payment sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
