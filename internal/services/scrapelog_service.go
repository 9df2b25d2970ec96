package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultScrapeLogLimit = 20

type ScrapeLogService struct {
	repo models.ScrapeLogRepo
	now  func() time.Time
}

func NewScrapeLogService(repo models.ScrapeLogRepo) *ScrapeLogService {
	return &ScrapeLogService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (ss *ScrapeLogService) RecordRun(ctx context.Context, log *models.ScrapeLog) (*models.ScrapeLog, error) {
	if log == nil {
		return nil, models.ValidationError("scrape log is required")
	}
	now := ss.now()
	log.ID = primitive.NewObjectID()
	log.CreatedAt = now
	if log.StartedAt.IsZero() {
		log.StartedAt = now
	}
	if log.FinishedAt.IsZero() {
		log.FinishedAt = now
	}
	if log.FinishedAt.Before(log.StartedAt) {
		return nil, models.ValidationError("finishedAt must not be before startedAt")
	}
	if err := models.ValidateStruct(log); err != nil {
		return nil, err
	}
	return ss.repo.CreateScrapeLog(ctx, log)
}

func (ss *ScrapeLogService) ListRuns(ctx context.Context, filter models.ScrapeLogFilter, page, limit int) ([]*models.ScrapeLog, models.Pagination, error) {
	if filter.Status != "" && filter.Status != models.ScrapeStatusSuccess && filter.Status != models.ScrapeStatusFailed {
		return nil, models.Pagination{}, models.ValidationError("status must be one of [success failed]")
	}
	logs, total, err := ss.repo.ListScrapeLogs(ctx, filter, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return logs, models.NewPagination(total, page, limit), nil
}
