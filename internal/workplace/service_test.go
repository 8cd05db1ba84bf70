package workplace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/workplace-booking/internal/cache"
)

type countingRepo struct {
	seeded map[string]Resource
	lists  int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{seeded: map[string]Resource{}}
}

func (r *countingRepo) ListByBranch(ctx context.Context, branch Branch) ([]Resource, error) {
	r.lists++
	out := []Resource{}
	for _, res := range Catalogue(branch) {
		if _, ok := r.seeded[res.ID]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*Resource, error) {
	res, ok := r.seeded[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &res, nil
}

func (r *countingRepo) Seed(ctx context.Context, resources []Resource) (int, error) {
	n := 0
	for _, res := range resources {
		if _, ok := r.seeded[res.ID]; !ok {
			r.seeded[res.ID] = res
			n++
		}
	}
	return n, nil
}

type mapCache struct {
	data    map[string][]byte
	failGet bool
	deleted []string
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	c.deleted = append(c.deleted, keys...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestList_UsesCache(t *testing.T) {
	repo := newCountingRepo()
	c := &mapCache{data: map[string][]byte{}}
	svc := NewService(repo, c, time.Minute, discardLogger())
	ctx := context.Background()
	require.NoError(t, svc.SeedCatalogue(ctx))

	first, err := svc.List(ctx, BranchMoscow)
	require.NoError(t, err)
	second, err := svc.List(ctx, BranchMoscow)
	require.NoError(t, err)

	assert.Len(t, first, 20)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.lists)
	assert.Contains(t, c.data, "workplaces:moscow")
}

func TestList_CacheFailureFallsBack(t *testing.T) {
	repo := newCountingRepo()
	c := &mapCache{data: map[string][]byte{}, failGet: true}
	svc := NewService(repo, c, time.Minute, discardLogger())
	ctx := context.Background()
	require.NoError(t, svc.SeedCatalogue(ctx))

	list, err := svc.List(ctx, BranchSPb)
	require.NoError(t, err)
	assert.Len(t, list, 18)
}

func TestList_UnknownBranchIsEmpty(t *testing.T) {
	svc := NewService(newCountingRepo(), nil, time.Minute, discardLogger())

	list, err := svc.List(context.Background(), Branch("kazan"))
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSeedCatalogue_InvalidatesCache(t *testing.T) {
	repo := newCountingRepo()
	c := &mapCache{data: map[string][]byte{"workplaces:moscow": []byte("[]")}}
	svc := NewService(repo, c, time.Minute, discardLogger())

	require.NoError(t, svc.SeedCatalogue(context.Background()))
	require.NoError(t, svc.SeedCatalogue(context.Background()))

	assert.NotContains(t, c.data, "workplaces:moscow")
	assert.ElementsMatch(t, []string{"workplaces:moscow", "workplaces:spb", "workplaces:moscow", "workplaces:spb"}, c.deleted)
	assert.Len(t, repo.seeded, 38)
}
