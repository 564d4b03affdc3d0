package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/culokossa/culib-api/internal/models"
	appErrors "github.com/culokossa/culib-api/pkg/errors"
)

const summaryCacheKey = "culib:stats:summary"

type statsRepository interface {
	IncrementDownloads(ctx context.Context, documentID int) error
	IncrementUniqueVisitors(ctx context.Context) error
	AllDownloads(ctx context.Context) (map[int]int64, error)
	UniqueVisitors(ctx context.Context) (int64, error)
	GetCached(ctx context.Context, key string) (string, bool, error)
	SetCached(ctx context.Context, key, payload string, ttl time.Duration) error
}

type statsDocumentRepository interface {
	FindByID(ctx context.Context, id int) (*models.Document, error)
	Count(ctx context.Context) (int, error)
	CountPerEntity(ctx context.Context) ([]models.EntityDocumentCount, error)
}

// StatsService aggregates usage counters and catalog totals into the public
// statistics summary. The summary is cached briefly so the landing page does
// not hammer the database on every visit.
type StatsService struct {
	stats     statsRepository
	documents statsDocumentRepository
	metrics   *MetricsService
	cacheTTL  time.Duration
	topLimit  int
	logger    *zap.Logger
}

// NewStatsService constructs the stats service. metrics may be nil.
func NewStatsService(stats statsRepository, documents statsDocumentRepository, metrics *MetricsService, cacheTTL time.Duration, topLimit int, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if topLimit <= 0 {
		topLimit = 5
	}
	return &StatsService{stats: stats, documents: documents, metrics: metrics, cacheTTL: cacheTTL, topLimit: topLimit, logger: logger}
}

// TrackDownload records one download of an existing document.
func (s *StatsService) TrackDownload(ctx context.Context, documentID int) error {
	if _, err := s.documents.FindByID(ctx, documentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if err := s.stats.IncrementDownloads(ctx, documentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to track download")
	}
	s.metrics.RecordDownload()
	return nil
}

// TrackVisit records one site visit.
func (s *StatsService) TrackVisit(ctx context.Context) error {
	if err := s.stats.IncrementUniqueVisitors(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to track visit")
	}
	s.metrics.RecordVisit()
	return nil
}

// TopDownloaded returns the most downloaded documents, highest first.
// Counters for deleted documents are skipped.
func (s *StatsService) TopDownloaded(ctx context.Context, limit int) ([]models.DocumentDownloadCount, error) {
	if limit <= 0 {
		limit = s.topLimit
	}
	counters, err := s.stats.AllDownloads(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load download counters")
	}
	type pair struct {
		id    int
		count int64
	}
	pairs := make([]pair, 0, len(counters))
	for id, count := range counters {
		if count > 0 {
			pairs = append(pairs, pair{id: id, count: count})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].id < pairs[j].id
	})

	top := make([]models.DocumentDownloadCount, 0, limit)
	for _, p := range pairs {
		if len(top) == limit {
			break
		}
		document, err := s.documents.FindByID(ctx, p.id)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
		}
		top = append(top, models.DocumentDownloadCount{
			DocumentID: document.ID,
			Title:      document.Title,
			Downloads:  p.count,
		})
	}
	return top, nil
}

// Summary builds the statistics overview, serving a cached copy when fresh.
func (s *StatsService) Summary(ctx context.Context) (*models.StatsSummary, error) {
	if payload, ok, err := s.stats.GetCached(ctx, summaryCacheKey); err != nil {
		s.logger.Warn("stats cache read failed", zap.Error(err))
	} else if ok {
		var cached models.StatsSummary
		if err := json.Unmarshal([]byte(payload), &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.logger.Warn("discarding malformed stats cache entry")
	}
	s.metrics.RecordCacheOperation(false)

	total, err := s.documents.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents")
	}
	perEntity, err := s.documents.CountPerEntity(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents per entity")
	}
	counters, err := s.stats.AllDownloads(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load download counters")
	}
	var totalDownloads int64
	for _, count := range counters {
		totalDownloads += count
	}
	visitors, err := s.stats.UniqueVisitors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load visitor counter")
	}
	top, err := s.TopDownloaded(ctx, s.topLimit)
	if err != nil {
		return nil, err
	}

	summary := &models.StatsSummary{
		TotalDocuments:     total,
		TotalDownloads:     totalDownloads,
		UniqueVisitors:     visitors,
		DocumentsPerEntity: perEntity,
		TopDownloaded:      top,
		GeneratedAt:        time.Now().UTC(),
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.stats.SetCached(ctx, summaryCacheKey, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}
