package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/models"
	"github.com/dmitrijs2005/gophcrm/internal/server/repositories/repomanager"
)

const defaultRecentLimit = 10

// EmailLogService is the read side of the email log.
type EmailLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewEmailLogService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *EmailLogService {
	return &EmailLogService{db: db, repomanager: m, logger: logger.With("module", "email_log_service")}
}

func (s *EmailLogService) Get(ctx context.Context, id int64) (*models.EmailLog, error) {
	e, err := s.repomanager.EmailLogs(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, repoError(ctx, s.logger, "get email log", err, "email_log_id", id)
	}
	return e, nil
}

func (s *EmailLogService) List(ctx context.Context, filter models.ListFilter) (*models.Page[models.EmailLog], error) {
	page, err := s.repomanager.EmailLogs(s.db).List(ctx, filter.Normalize())
	if err != nil {
		return nil, repoError(ctx, s.logger, "list email logs", err)
	}
	return page, nil
}

func (s *EmailLogService) ByCustomer(ctx context.Context, customerID int64) ([]models.EmailLog, error) {
	logs, err := s.repomanager.EmailLogs(s.db).ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, repoError(ctx, s.logger, "list customer email logs", err, "customer_id", customerID)
	}
	return logs, nil
}

// Recent returns the latest limit entries; a non-positive limit means 10.
func (s *EmailLogService) Recent(ctx context.Context, limit int) ([]models.EmailLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	logs, err := s.repomanager.EmailLogs(s.db).Recent(ctx, limit)
	if err != nil {
		return nil, repoError(ctx, s.logger, "recent email logs", err)
	}
	return logs, nil
}

// Stats counts entries per status. Statuses with no entries are reported as 0.
func (s *EmailLogService) Stats(ctx context.Context) ([]models.EmailStat, error) {
	rows, err := s.repomanager.EmailLogs(s.db).Stats(ctx)
	if err != nil {
		return nil, repoError(ctx, s.logger, "email stats", err)
	}

	counts := make(map[models.EmailStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}

	all := []models.EmailStatus{models.EmailStatusPending, models.EmailStatusSent, models.EmailStatusFailed, models.EmailStatusCancelled}
	stats := make([]models.EmailStat, 0, len(all))
	for _, st := range all {
		stats = append(stats, models.EmailStat{Status: st, Count: counts[st]})
	}
	return stats, nil
}
