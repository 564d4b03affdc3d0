package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/culokossa/culib-api/pkg/errors"
)

type fakeStatsRepo struct {
	downloads map[int]int64
	visitors  int64
	cache     map[string]string
	cacheTTLs map[string]time.Duration
}

func (f *fakeStatsRepo) IncrementDownloads(ctx context.Context, documentID int) error {
	if f.downloads == nil {
		f.downloads = map[int]int64{}
	}
	f.downloads[documentID]++
	return nil
}

func (f *fakeStatsRepo) IncrementUniqueVisitors(ctx context.Context) error {
	f.visitors++
	return nil
}

func (f *fakeStatsRepo) AllDownloads(ctx context.Context) (map[int]int64, error) {
	out := make(map[int]int64, len(f.downloads))
	for id, count := range f.downloads {
		out[id] = count
	}
	return out, nil
}

func (f *fakeStatsRepo) UniqueVisitors(ctx context.Context) (int64, error) {
	return f.visitors, nil
}

func (f *fakeStatsRepo) GetCached(ctx context.Context, key string) (string, bool, error) {
	payload, ok := f.cache[key]
	return payload, ok, nil
}

func (f *fakeStatsRepo) SetCached(ctx context.Context, key, payload string, ttl time.Duration) error {
	if f.cache == nil {
		f.cache = map[string]string{}
	}
	if f.cacheTTLs == nil {
		f.cacheTTLs = map[string]time.Duration{}
	}
	f.cache[key] = payload
	f.cacheTTLs[key] = ttl
	return nil
}

type countingDocumentRepo struct {
	*fakeDocumentRepo
	countCalls int
}

func (c *countingDocumentRepo) Count(ctx context.Context) (int, error) {
	c.countCalls++
	return c.fakeDocumentRepo.Count(ctx)
}

func newStatsFixture() (*fakeStatsRepo, *countingDocumentRepo) {
	fix := newCatalogFixture()
	docs := &fakeDocumentRepo{docs: sampleDocuments(), programs: fix.programs, departments: fix.departments}
	return &fakeStatsRepo{}, &countingDocumentRepo{fakeDocumentRepo: docs}
}

func TestStatsServiceTrackDownloadAccumulates(t *testing.T) {
	stats, docs := newStatsFixture()
	svc := NewStatsService(stats, docs, nil, time.Minute, 5, nil)

	require.NoError(t, svc.TrackDownload(context.Background(), 1))
	require.NoError(t, svc.TrackDownload(context.Background(), 1))
	require.NoError(t, svc.TrackDownload(context.Background(), 2))

	assert.Equal(t, int64(2), stats.downloads[1])
	assert.Equal(t, int64(1), stats.downloads[2])
}

func TestStatsServiceTrackDownloadUnknownDocument(t *testing.T) {
	stats, docs := newStatsFixture()
	svc := NewStatsService(stats, docs, nil, time.Minute, 5, nil)

	err := svc.TrackDownload(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, stats.downloads)
}

func TestStatsServiceTopDownloadedOrdersAndSkipsDeleted(t *testing.T) {
	stats, docs := newStatsFixture()
	stats.downloads = map[int]int64{1: 3, 2: 10, 3: 5, 42: 100}
	svc := NewStatsService(stats, docs, nil, time.Minute, 5, nil)

	top, err := svc.TopDownloaded(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 2, top[0].DocumentID)
	assert.Equal(t, int64(10), top[0].Downloads)
	assert.Equal(t, 3, top[1].DocumentID)
	assert.Equal(t, "Programmation Java", top[0].Title)
}

func TestStatsServiceSummaryAggregates(t *testing.T) {
	stats, docs := newStatsFixture()
	stats.downloads = map[int]int64{1: 3, 2: 7}
	stats.visitors = 12
	svc := NewStatsService(stats, docs, nil, time.Minute, 5, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalDocuments)
	assert.Equal(t, int64(10), summary.TotalDownloads)
	assert.Equal(t, int64(12), summary.UniqueVisitors)
	require.Len(t, summary.DocumentsPerEntity, 2)
	assert.Equal(t, 2, summary.DocumentsPerEntity[0].Count)
	assert.Equal(t, 1, summary.DocumentsPerEntity[1].Count)
	require.Len(t, summary.TopDownloaded, 2)
	assert.Equal(t, 2, summary.TopDownloaded[0].DocumentID)
}

func TestStatsServiceSummaryServedFromCache(t *testing.T) {
	stats, docs := newStatsFixture()
	svc := NewStatsService(stats, docs, nil, time.Minute, 5, nil)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, docs.countCalls)
	assert.Equal(t, time.Minute, stats.cacheTTLs[summaryCacheKey])

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, docs.countCalls, "second call must not hit the database")
	assert.Equal(t, first.TotalDocuments, second.TotalDocuments)
	assert.Equal(t, first.GeneratedAt.Unix(), second.GeneratedAt.Unix())
}

func TestStatsServiceTrackVisit(t *testing.T) {
	stats, docs := newStatsFixture()
	svc := NewStatsService(stats, docs, nil, time.Minute, 5, nil)

	require.NoError(t, svc.TrackVisit(context.Background()))
	require.NoError(t, svc.TrackVisit(context.Background()))
	assert.Equal(t, int64(2), stats.visitors)
}
