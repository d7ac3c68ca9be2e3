package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/knowflow/internal/skilltree"
	"github.com/abhisek/knowflow/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s.HistoryRepo(), nil), s
}

func sampleNodes() []skilltree.Node {
	return skilltree.Normalize([]skilltree.Node{
		{ID: "a", Label: "A"},
		{ID: "b", Label: "B"},
	})
}

func ids(items []Item) []string {
	return lo.Map(items, func(i Item, _ int) string { return i.ID })
}

func TestUpsertAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Upsert(ctx, "s1", "Python", sampleNodes())
	require.NoError(t, err)
	assert.False(t, item.LastAccessed.IsZero())

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Python", items[0].Topic)
	assert.Equal(t, sampleNodes(), items[0].Nodes)
}

func TestUpsertMovesToFrontWithoutDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := svc.Upsert(ctx, id, id, sampleNodes())
		require.NoError(t, err)
	}

	completed, err := skilltree.Complete(sampleNodes(), "a", 2)
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, "s1", "s1", completed)
	require.NoError(t, err)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3", "s2"}, ids(items))
	assert.Equal(t, 1, items[0].Progress().Completed)
	assert.Equal(t, 2, items[0].Progress().TotalStars)
}

func TestUpsertCapsAtMaxEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < MaxEntries+3; i++ {
		_, err := svc.Upsert(ctx, fmt.Sprintf("s%d", i), "t", sampleNodes())
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, MaxEntries)
	assert.Equal(t, "s12", items[0].ID)
	assert.Equal(t, "s3", items[MaxEntries-1].ID)
}

func TestDeleteKeepsOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		_, err := svc.Upsert(ctx, id, id, sampleNodes())
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, "s2"))
	require.NoError(t, svc.Delete(ctx, "unknown"))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s4", "s3", "s1"}, ids(items))
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "s1", "Go", sampleNodes())
	require.NoError(t, err)

	item, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Go", item.Topic)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSkipsCorruptRows(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "good", "Go", sampleNodes())
	require.NoError(t, err)
	require.NoError(t, s.HistoryRepo().Put(ctx, store.HistoryRecord{ID: "bad", Topic: "x", Nodes: []byte("{broken")}))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, ids(items))
}
