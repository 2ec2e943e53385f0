package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

const (
	maxSaveAttempts = 3
	saveRetryDelay  = 10 * time.Millisecond
	quotaWindow     = 7 * 24 * time.Hour
)

// Service is the order collaborator: reads orders, commits sub-order
// cancellations and keeps the operator's rolling cancellation count.
type Service struct {
	repo   domain.OrderRepository
	logger *log.Entry
	now    func() time.Time
}

// NewService wires the order service over a repository.
func NewService(repo domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// GetOrder returns the full order aggregate.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

// CancelSubOrder marks the shop's sub-order cancelled with the given reason.
// Only pending/preparing sub-orders qualify; a repeat cancel is reported as
// a clean conflict instead of mutating anything twice. Version conflicts on
// save are retried with a fresh read and backoff.
func (s *Service) CancelSubOrder(ctx context.Context, orderID, shopID, reason string) (domain.ShopSubOrder, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		order, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return domain.ShopSubOrder{}, err
		}

		sub, err := order.SubOrder(shopID)
		if err != nil {
			return domain.ShopSubOrder{}, err
		}
		if sub.Status == domain.SubOrderStatusCancelled {
			return domain.ShopSubOrder{}, domain.ErrSubOrderAlreadyCancelled
		}
		if !sub.Status.Cancellable() {
			return domain.ShopSubOrder{}, domain.ErrSubOrderNotCancellable
		}

		now := s.now().UTC()
		sub.Status = domain.SubOrderStatusCancelled
		sub.CancelReason = reason
		sub.UpdatedAt = now
		order.UpdatedAt = now

		if err := s.repo.Save(ctx, order); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxSaveAttempts-1 {
				s.logger.WithFields(log.Fields{
					"order_id": orderID,
					"attempt":  attempt + 1,
				}).Warn("version conflict on cancel, retrying")
				time.Sleep(saveRetryDelay << uint(attempt))
				continue
			}
			return domain.ShopSubOrder{}, err
		}

		s.logger.WithFields(log.Fields{
			"order_id": orderID,
			"shop_id":  shopID,
			"reason":   reason,
		}).Info("sub-order cancelled")
		return *sub, nil
	}

	return domain.ShopSubOrder{}, domain.ErrOrderVersionConflict
}

// GetCancellationCount returns how often the operator cancelled within the
// rolling quota window. Display only.
func (s *Service) GetCancellationCount(ctx context.Context, operatorID string) (int, error) {
	return s.repo.CancellationCountSince(ctx, operatorID, s.now().Add(-quotaWindow))
}

// RecordCancellation appends to the operator's cancellation log.
func (s *Service) RecordCancellation(ctx context.Context, operatorID string, at time.Time) error {
	return s.repo.RecordCancellation(ctx, operatorID, at)
}

var _ domain.OrderGateway = (*Service)(nil)
var _ domain.QuotaGateway = (*Service)(nil)
