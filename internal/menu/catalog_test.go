package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	calls int
	fn    func(ctx context.Context) ([]Item, error)
}

func (f *fakeLister) ListMenus(ctx context.Context) ([]Item, error) {
	f.calls++
	return f.fn(ctx)
}

func seeded() []Item {
	return []Item{
		{ID: 1, Name: "から揚げ弁当", Price: 500, Description: "ジューシーなから揚げ"},
		{ID: 2, Name: "焼き肉弁当", Price: 700},
		{ID: 3, Name: "幕の内弁当", Price: 600},
	}
}

func TestCatalogRefreshAndLookup(t *testing.T) {
	src := &fakeLister{fn: func(context.Context) ([]Item, error) { return seeded(), nil }}
	c := NewCatalog(src)

	items, err := c.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, c.Loaded())

	it, ok := c.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "焼き肉弁当", it.Name)

	price, ok := c.Price(3)
	require.True(t, ok)
	assert.Equal(t, int64(600), price)

	_, ok = c.Lookup(99)
	assert.False(t, ok)

	// lookups are served from cache only
	assert.Equal(t, 1, src.calls)
}

func TestCatalogRefreshEmptyListIsNotAnError(t *testing.T) {
	src := &fakeLister{fn: func(context.Context) ([]Item, error) { return seeded(), nil }}
	c := NewCatalog(src)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	src.fn = func(context.Context) ([]Item, error) { return []Item{}, nil }
	items, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, c.Items())

	for _, id := range []int{1, 2, 3} {
		_, ok := c.Lookup(id)
		assert.False(t, ok, "id %d should be gone", id)
	}
}

func TestCatalogRefreshErrorKeepsPreviousItems(t *testing.T) {
	src := &fakeLister{fn: func(context.Context) ([]Item, error) { return seeded(), nil }}
	c := NewCatalog(src)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	boom := errors.New("backend down")
	src.fn = func(context.Context) ([]Item, error) { return nil, boom }

	items, err := c.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, items)
	assert.Len(t, c.Items(), 3)

	_, ok := c.Lookup(1)
	assert.True(t, ok)
}

func TestCatalogItemsIsACopy(t *testing.T) {
	src := &fakeLister{fn: func(context.Context) ([]Item, error) { return seeded(), nil }}
	c := NewCatalog(src)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	items := c.Items()
	items[0].Price = 1

	it, _ := c.Lookup(1)
	assert.Equal(t, int64(500), it.Price)
	assert.Equal(t, int64(500), c.Items()[0].Price)
}

func TestCatalogNotLoadedBeforeRefresh(t *testing.T) {
	c := NewCatalog(&fakeLister{fn: func(context.Context) ([]Item, error) { return nil, errors.New("x") }})
	assert.False(t, c.Loaded())
	assert.Empty(t, c.Items())
	_, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, c.Loaded())
}
