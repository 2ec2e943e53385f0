package shops

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

const (
	maxSaveAttempts = 3
	saveRetryDelay  = 10 * time.Millisecond
)

// Service mutates shop trading schedules. Every operation is idempotent:
// applying the same closure twice lands on the same schedule.
type Service struct {
	repo   domain.ShopRepository
	logger *log.Entry
	now    func() time.Time
}

// NewService wires the shop service over a repository.
func NewService(repo domain.ShopRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "shops")
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CloseToday closes the shop for the remainder of the current calendar day.
func (s *Service) CloseToday(ctx context.Context, shopID string) (domain.ShopSchedule, error) {
	today := startOfDay(s.now().UTC())
	return s.saveSchedule(ctx, shopID, func(sched *domain.ShopSchedule) {
		sched.IsOpen = false
		sched.ReopenTime = ""
		sched.TemporaryClosureUntil = today
	})
}

// CloseForDays closes the shop from now through days calendar days ahead.
func (s *Service) CloseForDays(ctx context.Context, shopID string, days int) (domain.ShopSchedule, error) {
	if days < 1 {
		return domain.ShopSchedule{}, domain.ErrClosureDaysInvalid
	}
	until := startOfDay(s.now().UTC()).AddDate(0, 0, days-1)
	return s.saveSchedule(ctx, shopID, func(sched *domain.ShopSchedule) {
		sched.IsOpen = false
		sched.ReopenTime = ""
		sched.TemporaryClosureUntil = until
	})
}

// TemporaryClose closes the shop until the given "HH:MM" time of day.
func (s *Service) TemporaryClose(ctx context.Context, shopID, reopenTime string) (domain.ShopSchedule, error) {
	if !domain.ValidReopenTime(reopenTime) {
		return domain.ShopSchedule{}, domain.ErrReopenTimeInvalid
	}
	return s.saveSchedule(ctx, shopID, func(sched *domain.ShopSchedule) {
		sched.IsOpen = false
		sched.ReopenTime = reopenTime
		sched.TemporaryClosureUntil = time.Time{}
	})
}

func (s *Service) saveSchedule(ctx context.Context, shopID string, mutate func(*domain.ShopSchedule)) (domain.ShopSchedule, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		shop, err := s.repo.Get(ctx, shopID)
		if err != nil {
			return domain.ShopSchedule{}, err
		}

		sched := shop.Schedule
		sched.ShopID = shop.ID
		mutate(&sched)
		sched.UpdatedAt = s.now().UTC()

		saved, err := s.repo.SaveSchedule(ctx, shopID, sched, shop.Version)
		if err != nil {
			if domain.IsVersionConflict(err) && attempt < maxSaveAttempts-1 {
				s.logger.WithFields(log.Fields{
					"shop_id": shopID,
					"attempt": attempt + 1,
				}).Warn("version conflict on schedule save, retrying")
				time.Sleep(saveRetryDelay << uint(attempt))
				continue
			}
			return domain.ShopSchedule{}, err
		}

		s.logger.WithFields(log.Fields{
			"shop_id":     shopID,
			"is_open":     saved.Schedule.IsOpen,
			"reopen_time": saved.Schedule.ReopenTime,
		}).Info("shop schedule updated")
		return saved.Schedule, nil
	}

	return domain.ShopSchedule{}, domain.ErrShopVersionConflict
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var _ domain.ShopGateway = (*Service)(nil)
