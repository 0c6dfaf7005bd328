package tasks

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

func at(min int) time.Time {
	return time.Date(2024, 1, 1, 0, min, 0, 0, time.UTC)
}

func ids(list []*models.Task) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func TestCache_ReplaceSortsNewestFirst(t *testing.T) {
	c := NewCache()
	c.Prepend(&models.Task{ID: "stale"})

	c.Replace([]*models.Task{
		{ID: "a", CreatedAt: at(1)},
		{ID: "c", CreatedAt: at(3)},
		{ID: "b", CreatedAt: at(2)},
	})

	if diff := cmp.Diff([]string{"c", "b", "a"}, ids(c.Snapshot())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_PrependKeepsDuplicates(t *testing.T) {
	c := NewCache()
	c.Prepend(&models.Task{ID: "a"})
	c.Prepend(&models.Task{ID: "b"})
	c.Prepend(&models.Task{ID: "b"})

	assert.Equal(t, []string{"b", "b", "a"}, ids(c.Snapshot()))
}

func TestCache_ApplyAndRemove(t *testing.T) {
	c := NewCache()
	c.Replace([]*models.Task{{ID: "a", Description: "old", CreatedAt: at(1)}, {ID: "b", CreatedAt: at(2)}})

	assert.True(t, c.Apply(&models.Task{ID: "a", Description: "new", CreatedAt: at(1)}))
	assert.False(t, c.Apply(&models.Task{ID: "zzz"}))

	got, ok := c.Find("a")
	require.True(t, ok)
	assert.Equal(t, "new", got.Description)

	assert.True(t, c.Remove("b"))
	assert.False(t, c.Remove("b"))
	assert.Equal(t, 1, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestCache_SnapshotIsIsolated(t *testing.T) {
	path := "p"
	c := NewCache()
	c.Prepend(&models.Task{ID: "a", Title: "t", ImagePath: &path})

	snap := c.Snapshot()
	snap[0].Title = "changed"
	*snap[0].ImagePath = "changed"

	got, _ := c.Find("a")
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "p", *got.ImagePath)
}

func TestEditBuffers_KeyedPerTask(t *testing.T) {
	b := NewEditBuffers()
	b.Set("t2", "second")
	b.Set("t1", "first")

	v, ok := b.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = b.Get("t3")
	assert.False(t, ok)

	assert.Equal(t, []string{"t1", "t2"}, b.Pending())

	b.Discard("t1")
	assert.Equal(t, []string{"t2"}, b.Pending())

	b.Reset()
	assert.Empty(t, b.Pending())
}
