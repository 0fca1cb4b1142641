package vehicles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/matchd/internal/qdrant"
)

// fakeClient records calls and replays canned results.
type fakeClient struct {
	exists        bool
	created       []string
	deleted       []string
	upserted      []*qdrant.Point
	searchResults []*qdrant.ScoredPoint
	lastFilter    *qdrant.Filter
	lastLimit     uint64
	count         uint64
	countErr      error
}

func (f *fakeClient) CreateCollection(ctx context.Context, name string, vectorSize uint64) error {
	f.created = append(f.created, name)
	return nil
}

func (f *fakeClient) DeleteCollection(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeClient) Upsert(ctx context.Context, collection string, points []*qdrant.Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeClient) Search(ctx context.Context, collection string, vector []float32, limit uint64, filter *qdrant.Filter) ([]*qdrant.ScoredPoint, error) {
	f.lastLimit = limit
	f.lastFilter = filter
	return f.searchResults, nil
}

func (f *fakeClient) Count(ctx context.Context, collection string) (uint64, error) {
	return f.count, f.countErr
}

func (f *fakeClient) Health(ctx context.Context) error { return nil }
func (f *fakeClient) Close() error                     { return nil }

var _ qdrant.Client = (*fakeClient)(nil)

func newTestIndex(t *testing.T, client *fakeClient) *Index {
	t.Helper()
	ix, err := NewIndex(client, "vehicles-test", 3, zaptest.NewLogger(t))
	require.NoError(t, err)
	return ix
}

func TestNewIndexValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewIndex(nil, "c", 3, logger)
	assert.Error(t, err)

	_, err = NewIndex(&fakeClient{}, "", 3, logger)
	assert.Error(t, err)

	_, err = NewIndex(&fakeClient{}, "c", 0, logger)
	assert.Error(t, err)
}

func TestEnsureCollection(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		client := &fakeClient{exists: false}
		ix := newTestIndex(t, client)

		require.NoError(t, ix.EnsureCollection(context.Background()))
		assert.Equal(t, []string{"vehicles-test"}, client.created)
	})

	t.Run("no-op when present", func(t *testing.T) {
		client := &fakeClient{exists: true}
		ix := newTestIndex(t, client)

		require.NoError(t, ix.EnsureCollection(context.Background()))
		assert.Empty(t, client.created)
	})
}

func TestReset(t *testing.T) {
	client := &fakeClient{exists: true}
	ix := newTestIndex(t, client)

	require.NoError(t, ix.Reset(context.Background()))
	assert.Equal(t, []string{"vehicles-test"}, client.deleted)
	assert.Equal(t, []string{"vehicles-test"}, client.created)
}

func TestUpsert(t *testing.T) {
	client := &fakeClient{}
	ix := newTestIndex(t, client)

	listings := []Listing{
		{ID: "v1", Vector: []float32{1, 0, 0}, Payload: map[string]interface{}{"raw_name": "Swift"}},
		{ID: "v2", Vector: []float32{0, 1, 0}, Payload: map[string]interface{}{"raw_name": "Thar"}},
	}
	require.NoError(t, ix.Upsert(context.Background(), listings))
	require.Len(t, client.upserted, 2)
	assert.Equal(t, "v1", client.upserted[0].ID)
}

func TestUpsertRejectsBadListings(t *testing.T) {
	ix := newTestIndex(t, &fakeClient{})

	err := ix.Upsert(context.Background(), []Listing{{Vector: []float32{1, 0, 0}}})
	assert.ErrorContains(t, err, "missing ID")

	err = ix.Upsert(context.Background(), []Listing{{ID: "v1", Vector: []float32{1}}})
	assert.ErrorContains(t, err, "vector dimension")
}

func TestSearch(t *testing.T) {
	client := &fakeClient{
		searchResults: []*qdrant.ScoredPoint{
			{Point: qdrant.Point{ID: "v1", Payload: map[string]interface{}{"raw_name": "Thar"}}, Score: 0.12},
			{Point: qdrant.Point{ID: "v2", Payload: map[string]interface{}{"raw_name": "Swift"}}, Score: 0.34},
		},
	}
	ix := newTestIndex(t, client)

	candidates, err := ix.Search(context.Background(), []float32{1, 0, 0}, 20, &SearchFilter{PriceBand: "mid"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "v1", candidates[0].ID)
	assert.Equal(t, float32(0.12), candidates[0].Similarity)
	assert.Equal(t, "Thar", candidates[0].Name())
	assert.Equal(t, uint64(20), client.lastLimit)

	require.NotNil(t, client.lastFilter)
	require.Len(t, client.lastFilter.Must, 1)
	assert.Equal(t, "price_band", client.lastFilter.Must[0].Field)
	assert.Equal(t, "mid", client.lastFilter.Must[0].Match)
}

func TestSearchWithoutFilter(t *testing.T) {
	client := &fakeClient{}
	ix := newTestIndex(t, client)

	_, err := ix.Search(context.Background(), []float32{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Nil(t, client.lastFilter)
}

func TestStats(t *testing.T) {
	client := &fakeClient{count: 8128}
	ix := newTestIndex(t, client)

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vehicles-test", stats.Collection)
	assert.Equal(t, uint64(8128), stats.Points)
	assert.Equal(t, 3, stats.Dimension)
}

func TestStatsError(t *testing.T) {
	client := &fakeClient{countErr: errors.New("unavailable")}
	ix := newTestIndex(t, client)

	_, err := ix.Stats(context.Background())
	assert.ErrorContains(t, err, "counting listings")
}

func TestSearchValidation(t *testing.T) {
	ix := newTestIndex(t, &fakeClient{})

	_, err := ix.Search(context.Background(), nil, 5, nil)
	assert.Error(t, err)

	_, err = ix.Search(context.Background(), []float32{1, 0, 0}, 0, nil)
	assert.Error(t, err)
}
